package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"dialysis-scheduler/internal/apperr"
	"dialysis-scheduler/internal/model"
)

// CreateRescheduleRequest stores a pending request. A patient may hold only one pending request.
func (s *gormStore) CreateRescheduleRequest(ctx context.Context, req *model.RescheduleRequest) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var patient model.Patient
		if err := tx.Select("id").First(&patient, req.PatientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrPatientNotFound
			}
			return fmt.Errorf("failed to load patient %d: %w", req.PatientID, err)
		}

		var pending int64
		if err := tx.Model(&model.RescheduleRequest{}).
			Where("patient_id = ? AND status = ?", req.PatientID, model.RescheduleStatusPending).
			Count(&pending).Error; err != nil {
			return fmt.Errorf("failed to count pending requests: %w", err)
		}
		if pending > 0 {
			return apperr.ErrPendingRequestExists
		}

		req.Status = model.RescheduleStatusPending
		if err := tx.Omit("Patient").Create(req).Error; err != nil {
			return fmt.Errorf("failed to create reschedule request: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetRescheduleRequest(ctx context.Context, id int64) (*model.RescheduleRequest, error) {
	var req model.RescheduleRequest
	err := s.db.WithContext(ctx).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reschedule request %d: %w", id, err)
	}
	return &req, nil
}

// ListRescheduleRequests returns requests newest first.
func (s *gormStore) ListRescheduleRequests(ctx context.Context, filter RescheduleFilter) ([]model.RescheduleRequest, error) {
	q := s.db.WithContext(ctx).Model(&model.RescheduleRequest{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PatientID != 0 {
		q = q.Where("patient_id = ?", filter.PatientID)
	}

	var reqs []model.RescheduleRequest
	if err := q.Order("created_at DESC, id DESC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list reschedule requests: %w", err)
	}
	return reqs, nil
}

// DecideRescheduleRequest moves a pending request to a terminal status exactly once.
func (s *gormStore) DecideRescheduleRequest(ctx context.Context, id int64, status model.RescheduleStatus, response string, at time.Time) (*model.RescheduleRequest, error) {
	res := s.db.WithContext(ctx).Model(&model.RescheduleRequest{}).
		Where("id = ? AND status = ?", id, model.RescheduleStatusPending).
		Updates(map[string]any{
			"status":         status,
			"admin_response": response,
			"decided_at":     at,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to decide reschedule request %d: %w", id, res.Error)
	}

	req, err := s.GetRescheduleRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrAlreadyProcessed
	}
	return req, nil
}

// MarkRescheduleRequestsSeen flags the patient's decided requests as seen.
func (s *gormStore) MarkRescheduleRequestsSeen(ctx context.Context, patientID int64) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.RescheduleRequest{}).
		Where("patient_id = ? AND status <> ? AND seen = ?", patientID, model.RescheduleStatusPending, false).
		Update("seen", true)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark requests seen: %w", res.Error)
	}
	return res.RowsAffected, nil
}
