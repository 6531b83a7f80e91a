package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"dialysis-scheduler/internal/model"
)

// Store defines the interface for all database operations of the scheduling core.
type Store interface {
	// Capacity pool
	ListMachines(ctx context.Context) ([]model.Machine, error)
	ActiveMachines(ctx context.Context) ([]model.Machine, error)
	CreateMachine(ctx context.Context, m *model.Machine) error
	SetMachineActive(ctx context.Context, id int64, active bool) (*model.Machine, error)

	// Slot registry
	HasSlots(ctx context.Context, date string) (bool, error)
	CreateSlotGrid(ctx context.Context, date string, machines []model.Machine) (int, error)
	ListSlots(ctx context.Context, date string) ([]model.Slot, error)
	ClaimSlot(ctx context.Context, req ClaimRequest) (*model.Slot, error)
	ClaimFirstAvailable(ctx context.Context, req AutoClaim) (*model.Slot, error)
	ReleaseBooking(ctx context.Context, date string, patientID int64) (*model.Slot, error)
	ToggleDisable(ctx context.Context, slotID int64) (*model.Slot, error)
	FindConfirmedSlot(ctx context.Context, date string, patientID int64) (*model.Slot, error)

	// Patient directory
	GetPatient(ctx context.Context, id int64) (*model.Patient, error)
	CreatePatient(ctx context.Context, p *model.Patient) error

	// Reschedule requests
	CreateRescheduleRequest(ctx context.Context, req *model.RescheduleRequest) error
	GetRescheduleRequest(ctx context.Context, id int64) (*model.RescheduleRequest, error)
	ListRescheduleRequests(ctx context.Context, filter RescheduleFilter) ([]model.RescheduleRequest, error)
	DecideRescheduleRequest(ctx context.Context, id int64, status model.RescheduleStatus, response string, at time.Time) (*model.RescheduleRequest, error)
	MarkRescheduleRequestsSeen(ctx context.Context, patientID int64) (int64, error)

	// Attendance
	UpsertAttendance(ctx context.Context, a *model.Attendance) (*model.Attendance, error)
	ListAttendance(ctx context.Context, date string) ([]model.Attendance, error)

	// Push subscriptions
	SaveSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForPatient(ctx context.Context, patientID int64) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// isUniqueViolation recognizes unique-constraint failures from postgres and sqlite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
