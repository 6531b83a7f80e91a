package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"dialysis-scheduler/internal/apperr"
	"dialysis-scheduler/internal/model"
)

func (s *gormStore) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	var p model.Patient
	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load patient %d: %w", id, err)
	}
	return &p, nil
}

func (s *gormStore) CreatePatient(ctx context.Context, p *model.Patient) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}
