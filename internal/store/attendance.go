package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"dialysis-scheduler/internal/model"
)

// UpsertAttendance creates or updates the single row for (patient, date).
func (s *gormStore) UpsertAttendance(ctx context.Context, a *model.Attendance) (*model.Attendance, error) {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "patient_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "time", "updated_at"}),
	}).Create(a).Error; err != nil {
		return nil, fmt.Errorf("failed to upsert attendance for patient %d on %s: %w", a.PatientID, a.Date, err)
	}

	var saved model.Attendance
	if err := s.db.WithContext(ctx).
		Where("patient_id = ? AND date = ?", a.PatientID, a.Date).
		First(&saved).Error; err != nil {
		return nil, fmt.Errorf("failed to reload attendance: %w", err)
	}
	return &saved, nil
}

func (s *gormStore) ListAttendance(ctx context.Context, date string) ([]model.Attendance, error) {
	var rows []model.Attendance
	if err := s.db.WithContext(ctx).Where("date = ?", date).Order("patient_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", date, err)
	}
	return rows, nil
}
