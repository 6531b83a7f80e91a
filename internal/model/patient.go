package model

import "time"

// WeekdaySet is one of the two fixed weekly treatment triads.
type WeekdaySet string

const (
	// ScheduleMWF is Monday, Wednesday, Friday.
	ScheduleMWF WeekdaySet = "MWF"
	// ScheduleTTS is Tuesday, Thursday, Saturday.
	ScheduleTTS WeekdaySet = "TTS"
)

// Patient carries the scheduling view of a patient record. CurrentSlotNumber,
// CurrentMachineID and LastBookedAt mirror the latest booking for display and
// are never read back to make a scheduling decision.
type Patient struct {
	ID                int64      `gorm:"primaryKey" json:"id"`
	Name              string     `gorm:"size:256;not null" json:"name"`
	Schedule          WeekdaySet `gorm:"size:8;not null" json:"schedule"`
	PreferredPeriod   Period     `gorm:"size:16;not null;default:'morning'" json:"preferredPeriod"`
	CurrentSlotNumber *int       `json:"currentSlotNumber"`
	CurrentMachineID  *int64     `json:"currentMachineId"`
	LastBookedAt      *time.Time `json:"lastBookedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}
