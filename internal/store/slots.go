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

// releasedSlot resets every booking column together.
func releasedSlot() map[string]any {
	return map[string]any{
		"patient_id": nil,
		"booked":     false,
		"booked_at":  nil,
		"status":     model.SlotStatusAvailable,
	}
}

// errNoCandidate rolls back an auto-claim whose candidates were all taken,
// undoing the release of the patient's other slot on that date.
var errNoCandidate = errors.New("no claimable candidate")

func clearedMirror() map[string]any {
	return map[string]any{
		"current_slot_number": nil,
		"current_machine_id":  nil,
	}
}

// HasSlots reports whether any slot row exists for the date.
func (s *gormStore) HasSlots(ctx context.Context, date string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Slot{}).Where("date = ?", date).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count slots for %s: %w", date, err)
	}
	return count > 0, nil
}

// CreateSlotGrid inserts one row per (period, slot number), binding slot i to machines[i-1].
// It refuses to touch a date that already has rows.
func (s *gormStore) CreateSlotGrid(ctx context.Context, date string, machines []model.Machine) (int, error) {
	rows := make([]model.Slot, 0, len(model.Periods)*len(machines))
	for _, period := range model.Periods {
		for i, m := range machines {
			rows = append(rows, model.Slot{
				Date:       date,
				Period:     period,
				SlotNumber: i + 1,
				MachineID:  m.ID,
				Status:     model.SlotStatusAvailable,
			})
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.Slot{}).Where("date = ?", date).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to count slots for %s: %w", date, err)
		}
		if existing > 0 {
			return apperr.ErrAlreadyInitialized
		}
		if err := tx.Omit("Machine").CreateInBatches(&rows, 100).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.ErrAlreadyInitialized
			}
			return fmt.Errorf("failed to create slot grid for %s: %w", date, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ListSlots returns the grid for a date ordered by period then slot number.
func (s *gormStore) ListSlots(ctx context.Context, date string) ([]model.Slot, error) {
	var slots []model.Slot
	if err := s.db.WithContext(ctx).
		Preload("Machine").
		Where("date = ?", date).
		Order("period DESC, slot_number ASC").
		Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("failed to list slots for %s: %w", date, err)
	}
	return slots, nil
}

// ClaimSlot moves the patient's booking for the date onto the requested cell.
// The patient's other slot on that date is released in the same transaction,
// so a failed claim leaves the previous booking untouched.
func (s *gormStore) ClaimSlot(ctx context.Context, req ClaimRequest) (*model.Slot, error) {
	var claimed model.Slot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot model.Slot
		err := tx.Where("date = ? AND period = ? AND slot_number = ?", req.Date, req.Period, req.SlotNumber).
			First(&slot).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrSlotNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		if slot.Disabled {
			return apperr.ErrSlotDisabled
		}
		if slot.Booked {
			return apperr.ErrSlotAlreadyBooked
		}

		ok, err := claimInTx(tx, &slot, req.PatientID, req.Now)
		if err != nil {
			return err
		}
		if !ok {
			// Lost the race; report why the row is no longer claimable.
			if err := tx.First(&slot, slot.ID).Error; err != nil {
				return fmt.Errorf("failed to reload slot %d: %w", slot.ID, err)
			}
			if slot.Disabled {
				return apperr.ErrSlotDisabled
			}
			return apperr.ErrSlotAlreadyBooked
		}
		return tx.Preload("Machine").First(&claimed, slot.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &claimed, nil
}

// ClaimFirstAvailable claims the lowest-numbered free slot of the period.
// It returns (nil, nil) when every candidate is taken or disabled.
func (s *gormStore) ClaimFirstAvailable(ctx context.Context, req AutoClaim) (*model.Slot, error) {
	var claimed *model.Slot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidates []model.Slot
		if err := tx.Where("date = ? AND period = ? AND booked = ? AND disabled = ?", req.Date, req.Period, false, false).
			Order("slot_number ASC").
			Find(&candidates).Error; err != nil {
			return fmt.Errorf("failed to search %s slots on %s: %w", req.Period, req.Date, err)
		}

		for i := range candidates {
			ok, err := claimInTx(tx, &candidates[i], req.PatientID, req.Now)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}

			if req.ReleaseDate != "" && req.ReleaseDate != req.Date {
				if err := tx.Model(&model.Slot{}).
					Where("date = ? AND patient_id = ?", req.ReleaseDate, req.PatientID).
					Updates(releasedSlot()).Error; err != nil {
					return fmt.Errorf("failed to release booking on %s: %w", req.ReleaseDate, err)
				}
			}
			if req.SetPreferredPeriod {
				if err := tx.Model(&model.Patient{}).Where("id = ?", req.PatientID).
					Update("preferred_period", req.Period).Error; err != nil {
					return fmt.Errorf("failed to update preferred period: %w", err)
				}
			}

			var slot model.Slot
			if err := tx.Preload("Machine").First(&slot, candidates[i].ID).Error; err != nil {
				return err
			}
			claimed = &slot
			return nil
		}
		return errNoCandidate
	})
	if errors.Is(err, errNoCandidate) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// claimInTx releases the patient's other slot on the same date, then books slot
// with a conditional update. It returns false when the row was no longer free.
func claimInTx(tx *gorm.DB, slot *model.Slot, patientID int64, now time.Time) (bool, error) {
	if err := tx.Model(&model.Slot{}).
		Where("date = ? AND patient_id = ? AND id <> ?", slot.Date, patientID, slot.ID).
		Updates(releasedSlot()).Error; err != nil {
		return false, fmt.Errorf("failed to release previous booking: %w", err)
	}

	res := tx.Model(&model.Slot{}).
		Where("id = ? AND booked = ? AND disabled = ?", slot.ID, false, false).
		Updates(map[string]any{
			"patient_id": patientID,
			"booked":     true,
			"booked_at":  now,
			"status":     model.SlotStatusBooked,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, apperr.ErrSlotAlreadyBooked
		}
		return false, fmt.Errorf("failed to claim slot %d: %w", slot.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	if err := tx.Model(&model.Patient{}).Where("id = ?", patientID).Updates(map[string]any{
		"current_slot_number": slot.SlotNumber,
		"current_machine_id":  slot.MachineID,
		"last_booked_at":      now,
	}).Error; err != nil {
		return false, fmt.Errorf("failed to mirror booking onto patient %d: %w", patientID, err)
	}
	return true, nil
}

// ReleaseBooking resets the patient's booked slot for the date.
func (s *gormStore) ReleaseBooking(ctx context.Context, date string, patientID int64) (*model.Slot, error) {
	var slot model.Slot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("date = ? AND patient_id = ? AND booked = ?", date, patientID, true).First(&slot).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNoBookingFound
		}
		if err != nil {
			return fmt.Errorf("failed to load booking: %w", err)
		}

		if err := tx.Model(&model.Slot{}).Where("id = ?", slot.ID).Updates(releasedSlot()).Error; err != nil {
			return fmt.Errorf("failed to release slot %d: %w", slot.ID, err)
		}
		if err := tx.Model(&model.Patient{}).Where("id = ?", patientID).Updates(clearedMirror()).Error; err != nil {
			return fmt.Errorf("failed to clear patient %d mirror: %w", patientID, err)
		}
		return tx.Preload("Machine").First(&slot, slot.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// ToggleDisable flips the disabled flag without touching the booking columns.
func (s *gormStore) ToggleDisable(ctx context.Context, slotID int64) (*model.Slot, error) {
	var slot model.Slot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Slot{}).Where("id = ?", slotID).Update("disabled", gorm.Expr("NOT disabled"))
		if res.Error != nil {
			return fmt.Errorf("failed to toggle slot %d: %w", slotID, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrSlotNotFound
		}
		return tx.Preload("Machine").First(&slot, slotID).Error
	})
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindConfirmedSlot returns the patient's booked or completed slot for the date.
func (s *gormStore) FindConfirmedSlot(ctx context.Context, date string, patientID int64) (*model.Slot, error) {
	var slot model.Slot
	err := s.db.WithContext(ctx).
		Where("date = ? AND patient_id = ? AND booked = ? AND status IN ?", date, patientID, true,
			[]model.SlotStatus{model.SlotStatusBooked, model.SlotStatusCompleted}).
		First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNoConfirmedAppointment
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmed slot: %w", err)
	}
	return &slot, nil
}
