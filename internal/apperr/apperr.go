// Package apperr defines the typed failures returned by the scheduling core.
package apperr

import "errors"

// Kind classifies a failure for callers that need to react differently to it.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInvalidState      Kind = "invalid_state"
	KindCapacityExhausted Kind = "capacity_exhausted"
	KindValidation        Kind = "validation"
)

// Error is a classified failure with a stable machine-readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// New creates a classified error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation creates a Validation failure for malformed input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: "invalid_input", Message: message}
}

var (
	ErrSlotNotFound    = New(KindNotFound, "slot_not_found", "slot not found")
	ErrPatientNotFound = New(KindNotFound, "patient_not_found", "patient not found")
	ErrMachineNotFound = New(KindNotFound, "machine_not_found", "machine not found")
	ErrRequestNotFound = New(KindNotFound, "request_not_found", "reschedule request not found")
	ErrNoBookingFound  = New(KindNotFound, "no_booking_found", "no booking found for patient on this date")

	ErrSlotAlreadyBooked    = New(KindConflict, "slot_already_booked", "slot is already booked")
	ErrAlreadyInitialized   = New(KindConflict, "already_initialized", "slots already initialized for this date")
	ErrAlreadyProcessed     = New(KindConflict, "already_processed", "reschedule request has already been processed")
	ErrPendingRequestExists = New(KindConflict, "pending_request_exists", "patient already has a pending reschedule request")

	ErrSlotDisabled           = New(KindInvalidState, "slot_disabled", "slot is disabled and cannot be booked")
	ErrOutsideWindow          = New(KindInvalidState, "outside_window", "check-in is outside the time window for this slot")
	ErrNoConfirmedAppointment = New(KindInvalidState, "no_confirmed_appointment", "no confirmed appointment today")

	ErrInsufficientCapacity = New(KindCapacityExhausted, "insufficient_capacity", "not enough active machines to initialize slots")
	ErrNoAfternoonSlot      = New(KindCapacityExhausted, "no_afternoon_slot", "no afternoon slot available on requested date")
)

// KindOf returns the Kind of the first *Error in err's chain, or "" when err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
