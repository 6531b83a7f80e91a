package notification

import "fmt"

// Message types carried in the push payload.
const (
	TypeRescheduleApproved = "reschedule_approved"
	TypeRescheduleDenied   = "reschedule_denied"
	TypeCheckIn            = "checkin"
)

// Message is the JSON payload delivered to the patient's devices.
type Message struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Date  string `json:"date,omitempty"`
}

// NotifyApproval tells the patient their reschedule to newDate was approved.
// slotNumber is the afternoon slot booked for them, or 0 when none was free.
func (wp *WorkerPool) NotifyApproval(patientID int64, newDate string, slotNumber int) {
	body := fmt.Sprintf("Your session has been moved to %s, afternoon slot %d.", newDate, slotNumber)
	if slotNumber == 0 {
		body = fmt.Sprintf("Your request to move to %s was approved, but no afternoon slot is free yet. The clinic will assign one.", newDate)
	}
	wp.Dispatch(Job{PatientID: patientID, Message: Message{
		Type:  TypeRescheduleApproved,
		Title: "Reschedule approved",
		Body:  body,
		Date:  newDate,
	}})
}

// NotifyDenial tells the patient their request to move oldDate to newDate was denied.
func (wp *WorkerPool) NotifyDenial(patientID int64, reason, oldDate, newDate string) {
	wp.Dispatch(Job{PatientID: patientID, Message: Message{
		Type:  TypeRescheduleDenied,
		Title: "Reschedule denied",
		Body:  fmt.Sprintf("Your request to move %s to %s was denied: %s", oldDate, newDate, reason),
		Date:  oldDate,
	}})
}

// PublishCheckIn confirms an attendance check-in to the patient.
func (wp *WorkerPool) PublishCheckIn(patientID int64, date, at string) {
	wp.Dispatch(Job{PatientID: patientID, Message: Message{
		Type:  TypeCheckIn,
		Title: "Checked in",
		Body:  fmt.Sprintf("You were checked in on %s at %s.", date, at),
		Date:  date,
	}})
}
