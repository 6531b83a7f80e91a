package store

import (
	"time"

	"dialysis-scheduler/internal/model"
)

// ClaimRequest targets one grid cell for a patient.
type ClaimRequest struct {
	Date       string
	Period     model.Period
	SlotNumber int
	PatientID  int64
	Now        time.Time
}

// AutoClaim asks for the lowest-numbered free slot of a period.
type AutoClaim struct {
	Date      string
	Period    model.Period
	PatientID int64
	Now       time.Time
	// ReleaseDate, when set, is the date whose booking the patient gives up once a slot is claimed.
	ReleaseDate string
	// SetPreferredPeriod overwrites the patient's recurring period with Period on success.
	SetPreferredPeriod bool
}

// RescheduleFilter narrows request listings. Zero values mean no filter.
type RescheduleFilter struct {
	Status    model.RescheduleStatus
	PatientID int64
}
