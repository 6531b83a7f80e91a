package model

import "time"

// RescheduleStatus records the administrative decision on a request.
type RescheduleStatus string

const (
	RescheduleStatusPending  RescheduleStatus = "pending"
	RescheduleStatusApproved RescheduleStatus = "approved"
	RescheduleStatusDenied   RescheduleStatus = "denied"
)

// RescheduleRequest is a patient's ask to move a treatment date.
type RescheduleRequest struct {
	ID                    int64            `gorm:"primaryKey" json:"id"`
	PatientID             int64            `gorm:"not null;index" json:"patientId"`
	RequestedDate         string           `gorm:"size:10;not null" json:"requestedDate"`
	OriginalScheduledDate string           `gorm:"size:10;not null" json:"originalScheduledDate"`
	Status                RescheduleStatus `gorm:"size:16;not null;default:'pending';index" json:"status"`
	AdminResponse         string           `gorm:"size:1024" json:"adminResponse,omitempty"`
	Seen                  bool             `gorm:"not null" json:"seen"`
	DecidedAt             *time.Time       `json:"decidedAt,omitempty"`
	CreatedAt             time.Time        `gorm:"not null" json:"createdAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`

	// Associations
	Patient Patient `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
