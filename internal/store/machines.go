package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"dialysis-scheduler/internal/apperr"
	"dialysis-scheduler/internal/model"
)

// ListMachines returns every machine, active or not.
func (s *gormStore) ListMachines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	return machines, nil
}

// ActiveMachines returns the capacity pool ordered by id. The order is what
// binds slot numbers to machines, so it must stay stable for a fixed set.
func (s *gormStore) ActiveMachines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to list active machines: %w", err)
	}
	return machines, nil
}

func (s *gormStore) CreateMachine(ctx context.Context, m *model.Machine) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create machine: %w", err)
	}
	return nil
}

// SetMachineActive enables or disables a machine for future grids.
func (s *gormStore) SetMachineActive(ctx context.Context, id int64, active bool) (*model.Machine, error) {
	res := s.db.WithContext(ctx).Model(&model.Machine{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update machine %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrMachineNotFound
	}

	var m model.Machine
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrMachineNotFound
		}
		return nil, fmt.Errorf("failed to reload machine %d: %w", id, err)
	}
	return &m, nil
}
