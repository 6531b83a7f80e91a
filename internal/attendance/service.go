// Package attendance records daily presence and gates device check-ins on the booked slot.
package attendance

import (
	"context"

	"go.uber.org/zap"

	"dialysis-scheduler/internal/apperr"
	"dialysis-scheduler/internal/clock"
	"dialysis-scheduler/internal/model"
	"dialysis-scheduler/internal/parse"
	"dialysis-scheduler/internal/store"
)

// CheckInPublisher announces a successful check-in. Implementations must not block.
type CheckInPublisher interface {
	PublishCheckIn(patientID int64, date, at string)
}

// Service marks attendance.
type Service struct {
	store      store.Store
	clock      clock.Clock
	publisher  CheckInPublisher
	cutoffHour int
	logger     *zap.Logger
}

// NewService creates an attendance service. Morning check-ins must happen
// before cutoffHour local time, afternoon check-ins at or after it.
func NewService(s store.Store, c clock.Clock, p CheckInPublisher, cutoffHour int, logger *zap.Logger) *Service {
	return &Service{store: s, clock: c, publisher: p, cutoffHour: cutoffHour, logger: logger}
}

// MarkAttendance upserts the patient's attendance for date. It does not
// consult the slot registry. Present without an explicit time is stamped
// with the current local time; absent always clears the time.
func (s *Service) MarkAttendance(ctx context.Context, patientID int64, rawDate, rawStatus, rawTime string) (*model.Attendance, error) {
	date, err := parse.Date(rawDate)
	if err != nil {
		return nil, err
	}
	status, err := parse.AttendanceStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}

	row := &model.Attendance{PatientID: patientID, Date: date, Status: status}
	if status == model.AttendancePresent {
		at := s.clock.Now().Format(clock.TimeLayout)
		if rawTime != "" {
			if at, err = parse.TimeOfDay(rawTime); err != nil {
				return nil, err
			}
		}
		row.Time = &at
	}

	return s.save(ctx, row)
}

// RadarCheckIn marks the patient present for today if they hold a confirmed
// slot and the current local time falls in that slot's period.
func (s *Service) RadarCheckIn(ctx context.Context, patientID int64) (*model.Attendance, error) {
	now := s.clock.Now()
	today := now.Format(clock.DateLayout)

	slot, err := s.store.FindConfirmedSlot(ctx, today, patientID)
	if err != nil {
		return nil, err
	}

	inWindow := now.Hour() < s.cutoffHour
	if slot.Period == model.PeriodAfternoon {
		inWindow = !inWindow
	}
	if !inWindow {
		s.logger.Info("check-in outside window",
			zap.Int64("patient_id", patientID),
			zap.String("period", string(slot.Period)),
			zap.String("time", now.Format(clock.TimeLayout)))
		return nil, apperr.ErrOutsideWindow
	}

	at := now.Format(clock.TimeLayout)
	return s.save(ctx, &model.Attendance{
		PatientID: patientID,
		Date:      today,
		Status:    model.AttendancePresent,
		Time:      &at,
	})
}

// List returns the attendance rows for a date.
func (s *Service) List(ctx context.Context, rawDate string) ([]model.Attendance, error) {
	date, err := parse.Date(rawDate)
	if err != nil {
		return nil, err
	}
	return s.store.ListAttendance(ctx, date)
}

func (s *Service) save(ctx context.Context, row *model.Attendance) (*model.Attendance, error) {
	saved, err := s.store.UpsertAttendance(ctx, row)
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.Int64("patient_id", saved.PatientID),
		zap.String("date", saved.Date),
		zap.String("status", string(saved.Status)),
	}
	if saved.Time != nil {
		fields = append(fields, zap.String("time", *saved.Time))
	}
	s.logger.Info("attendance recorded", fields...)

	if saved.Status == model.AttendancePresent && saved.Time != nil {
		s.publisher.PublishCheckIn(saved.PatientID, saved.Date, *saved.Time)
	}
	return saved, nil
}
