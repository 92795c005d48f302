package scheduling

import (
	"errors"
	"fmt"
	"time"

	"clinic-scheduler-server/internal/models"
)

// Sentinel errors for guard failures that carry no extra context.
var (
	ErrStartInPast      = errors.New("appointment start must be in the future")
	ErrQueueEmpty       = errors.New("no confirmed appointments are waiting")
	ErrInvalidTimeRange = errors.New("template end time must be after start time")
)

// SlotUnavailableError reports a requested start time that collides with an
// existing booking or falls outside the doctor's template hours.
type SlotUnavailableError struct {
	DoctorID string
	StartAt  time.Time
	Reason   string
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot %s unavailable for doctor %s: %s",
		e.StartAt.Format(time.RFC3339), e.DoctorID, e.Reason)
}

// InvalidTransitionError reports a state-machine event that is not legal from
// the appointment's current status. The appointment is left unchanged.
type InvalidTransitionError struct {
	AppointmentID string
	Current       models.AppointmentStatus
	Event         Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("appointment %s: cannot %s from status %s",
		e.AppointmentID, e.Event, e.Current)
}

// NoticeViolationError reports a cancel or reschedule attempted inside the
// minimum-notice window. Deadline is the last instant the action was allowed.
type NoticeViolationError struct {
	AppointmentID string
	Action        Event
	Deadline      time.Time
}

func (e *NoticeViolationError) Error() string {
	return fmt.Sprintf("appointment %s: %s no longer allowed after %s",
		e.AppointmentID, e.Action, e.Deadline.Format(time.RFC3339))
}

// QueueBusyError reports a call-next attempted while the doctor already has a
// patient in consultation.
type QueueBusyError struct {
	DoctorID     string
	InProgressID string
}

func (e *QueueBusyError) Error() string {
	return fmt.Sprintf("doctor %s is already serving appointment %s",
		e.DoctorID, e.InProgressID)
}

// NotInProgressError reports a complete or no-show attempted on an
// appointment that is not the doctor's active one.
type NotInProgressError struct {
	AppointmentID string
	Status        models.AppointmentStatus
}

func (e *NotInProgressError) Error() string {
	return fmt.Sprintf("appointment %s is not in progress (status %s)",
		e.AppointmentID, e.Status)
}
