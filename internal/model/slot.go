package model

import "time"

// Period is one of the two daily treatment windows.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
)

// Periods lists the daily windows in grid order.
var Periods = []Period{PeriodMorning, PeriodAfternoon}

// SlotStatus is the lifecycle state of a slot row.
type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusCompleted SlotStatus = "completed"
	SlotStatusCancelled SlotStatus = "cancelled"
)

// Slot is one bookable (date, period, slot number) cell bound to a machine.
// Rows are created by the initializer and never deleted.
type Slot struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	Date       string     `gorm:"size:10;not null;uniqueIndex:idx_slot_cell,priority:1;uniqueIndex:idx_slot_patient_date,priority:2" json:"date"`
	Period     Period     `gorm:"size:16;not null;uniqueIndex:idx_slot_cell,priority:2" json:"period"`
	SlotNumber int        `gorm:"not null;uniqueIndex:idx_slot_cell,priority:3" json:"slotNumber"`
	MachineID  int64      `gorm:"not null;index" json:"machineId"`
	PatientID  *int64     `gorm:"uniqueIndex:idx_slot_patient_date,priority:1" json:"patientId"`
	Booked     bool       `gorm:"not null" json:"booked"`
	BookedAt   *time.Time `json:"bookedAt"`
	Status     SlotStatus `gorm:"size:16;not null;default:'available'" json:"status"`
	Disabled   bool       `gorm:"not null" json:"disabled"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	// Associations
	Machine Machine `gorm:"constraint:OnDelete:RESTRICT" json:"machine"`
}

// Available reports whether the slot can accept a new booking.
func (s Slot) Available() bool {
	return !s.Booked && !s.Disabled
}
