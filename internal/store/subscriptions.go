package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dialysis-scheduler/internal/apperr"
	"dialysis-scheduler/internal/model"
)

// SaveSubscription creates or replaces a push subscription keyed by endpoint.
func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var patient model.Patient
		if err := tx.Select("id").First(&patient, sub.PatientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrPatientNotFound
			}
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"patient_id", "p256dh", "auth"}),
		}).Create(sub).Error
	})
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

func (s *gormStore) SubscriptionsForPatient(ctx context.Context, patientID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("patient_id = ?", patientID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for patient %d: %w", patientID, err)
	}
	return subs, nil
}
