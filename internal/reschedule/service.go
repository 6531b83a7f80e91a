// Package reschedule runs the patient reschedule request workflow.
package reschedule

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dialysis-scheduler/internal/apperr"
	"dialysis-scheduler/internal/clock"
	"dialysis-scheduler/internal/model"
	"dialysis-scheduler/internal/parse"
	"dialysis-scheduler/internal/store"
)

// Notifier delivers decision notices to the patient. Implementations must not block.
type Notifier interface {
	NotifyApproval(patientID int64, newDate string, slotNumber int)
	NotifyDenial(patientID int64, reason, oldDate, newDate string)
}

// ApprovalResult pairs the recorded decision with the capacity outcome.
// BookedSlot is nil when no afternoon slot could be claimed.
type ApprovalResult struct {
	Request    *model.RescheduleRequest `json:"request"`
	BookedSlot *model.Slot              `json:"bookedSlot"`
	Message    string                   `json:"message"`
}

// DenialResult is the outcome of Deny.
type DenialResult struct {
	Request *model.RescheduleRequest `json:"request"`
	Message string                   `json:"message"`
}

// Service implements the pending -> approved | denied state machine.
type Service struct {
	store    store.Store
	clock    clock.Clock
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates a reschedule workflow service.
func NewService(s store.Store, c clock.Clock, n Notifier, logger *zap.Logger) *Service {
	return &Service{store: s, clock: c, notifier: n, logger: logger}
}

// Submit records a pending request to move originalDate to requestedDate.
func (s *Service) Submit(ctx context.Context, patientID int64, rawRequested, rawOriginal string) (*model.RescheduleRequest, error) {
	requested, err := parse.Date(rawRequested)
	if err != nil {
		return nil, err
	}
	original, err := parse.Date(rawOriginal)
	if err != nil {
		return nil, err
	}
	if requested == original {
		return nil, apperr.Validation("requested date must differ from the original date")
	}

	req := &model.RescheduleRequest{
		PatientID:             patientID,
		RequestedDate:         requested,
		OriginalScheduledDate: original,
	}
	if err := s.store.CreateRescheduleRequest(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("reschedule requested",
		zap.Int64("request_id", req.ID),
		zap.Int64("patient_id", patientID),
		zap.String("original_date", original),
		zap.String("requested_date", requested))
	return req, nil
}

// Approve records the approval, then tries to claim the lowest-numbered free
// afternoon slot on the requested date. The approval stands even when no slot
// can be claimed.
func (s *Service) Approve(ctx context.Context, id int64) (*ApprovalResult, error) {
	now := s.clock.Now()
	req, err := s.store.DecideRescheduleRequest(ctx, id, model.RescheduleStatusApproved, "", now)
	if err != nil {
		return nil, err
	}

	result := &ApprovalResult{Request: req}
	slot, err := s.store.ClaimFirstAvailable(ctx, store.AutoClaim{
		Date:               req.RequestedDate,
		Period:             model.PeriodAfternoon,
		PatientID:          req.PatientID,
		Now:                now,
		ReleaseDate:        req.OriginalScheduledDate,
		SetPreferredPeriod: true,
	})
	switch {
	case err != nil:
		s.logger.Error("approved reschedule but slot assignment failed",
			zap.Int64("request_id", id),
			zap.String("requested_date", req.RequestedDate),
			zap.Error(err))
		result.Message = fmt.Sprintf("Reschedule approved, but a slot on %s could not be assigned.", req.RequestedDate)
	case slot == nil:
		s.logger.Info("approved reschedule without a slot",
			zap.Int64("request_id", id),
			zap.Int64("patient_id", req.PatientID),
			zap.String("requested_date", req.RequestedDate),
			zap.String("code", apperr.ErrNoAfternoonSlot.Code))
		result.Message = fmt.Sprintf("Reschedule approved, but %s.", apperr.ErrNoAfternoonSlot.Message)
	default:
		result.BookedSlot = slot
		s.logger.Info("approved reschedule",
			zap.Int64("request_id", id),
			zap.Int64("patient_id", req.PatientID),
			zap.String("requested_date", req.RequestedDate),
			zap.Int("slot_number", slot.SlotNumber),
			zap.Int64("machine_id", slot.MachineID))
		result.Message = fmt.Sprintf("Reschedule approved. Afternoon slot %d on %s has been booked.", slot.SlotNumber, req.RequestedDate)
	}

	slotNumber := 0
	if result.BookedSlot != nil {
		slotNumber = result.BookedSlot.SlotNumber
	}
	s.notifier.NotifyApproval(req.PatientID, req.RequestedDate, slotNumber)
	return result, nil
}

// Deny records the denial with a required reason.
func (s *Service) Deny(ctx context.Context, id int64, reason string) (*DenialResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("a denial reason is required")
	}

	req, err := s.store.DecideRescheduleRequest(ctx, id, model.RescheduleStatusDenied, reason, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("denied reschedule",
		zap.Int64("request_id", id),
		zap.Int64("patient_id", req.PatientID),
		zap.String("reason", reason))
	s.notifier.NotifyDenial(req.PatientID, reason, req.OriginalScheduledDate, req.RequestedDate)
	return &DenialResult{Request: req, Message: "Reschedule request denied."}, nil
}

// List returns requests, optionally filtered by status, newest first.
func (s *Service) List(ctx context.Context, rawStatus string) ([]model.RescheduleRequest, error) {
	status, err := parse.RescheduleStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return s.store.ListRescheduleRequests(ctx, store.RescheduleFilter{Status: status})
}

// ListForPatient returns the patient's requests, newest first.
func (s *Service) ListForPatient(ctx context.Context, patientID int64) ([]model.RescheduleRequest, error) {
	if _, err := s.store.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.store.ListRescheduleRequests(ctx, store.RescheduleFilter{PatientID: patientID})
}

// MarkSeen clears the unseen-decision badge for a patient.
func (s *Service) MarkSeen(ctx context.Context, patientID int64) (int64, error) {
	return s.store.MarkRescheduleRequestsSeen(ctx, patientID)
}
