package model

import "time"

// Machine is one dialysis machine in the capacity pool.
type Machine struct {
	ID                   int64     `gorm:"primaryKey" json:"id"`
	DisplayName          string    `gorm:"size:256;not null" json:"displayName"`
	Active               bool      `gorm:"not null;index" json:"active"`
	AvgProcessingMinutes int       `gorm:"not null;default:0" json:"avgProcessingMinutes"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}
