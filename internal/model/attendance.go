package model

import "time"

// AttendanceStatus is the check-in outcome for a patient on a date.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// Attendance is upserted once per (patient, date).
type Attendance struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	PatientID int64            `gorm:"not null;uniqueIndex:idx_attendance_patient_date,priority:1" json:"patientId"`
	Date      string           `gorm:"size:10;not null;uniqueIndex:idx_attendance_patient_date,priority:2;index" json:"date"`
	Status    AttendanceStatus `gorm:"size:16;not null" json:"status"`
	Time      *string          `gorm:"size:8" json:"time"` // HH:MM:SS local, present only
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// TableName keeps the singular table name used by the clinic database.
func (Attendance) TableName() string { return "attendance" }
