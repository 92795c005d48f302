package scheduling

import (
	"gorm.io/gorm"

	"clinic-scheduler-server/internal/models"
)

// Event is a state-machine event applied to an appointment.
type Event string

const (
	EventConfirm    Event = "confirm"
	EventReschedule Event = "reschedule"
	EventCancel     Event = "cancel"
	EventCallNext   Event = "call-next"
	EventComplete   Event = "complete"
	EventNoShow     Event = "mark-no-show"
)

// transitionTable defines every legal status change. Anything not listed
// here fails with InvalidTransitionError. COMPLETED, CANCELLED and NO_SHOW
// have no outgoing edges.
var transitionTable = map[models.AppointmentStatus]map[Event]models.AppointmentStatus{
	models.StatusScheduled: {
		EventConfirm:    models.StatusConfirmed,
		EventReschedule: models.StatusScheduled,
		EventCancel:     models.StatusCancelled,
	},
	models.StatusConfirmed: {
		EventReschedule: models.StatusScheduled,
		EventCancel:     models.StatusCancelled,
		EventCallNext:   models.StatusInProgress,
	},
	models.StatusInProgress: {
		EventComplete: models.StatusCompleted,
		EventNoShow:   models.StatusNoShow,
	},
}

// nextStatus resolves the target status for applying event to the
// appointment's current status.
func nextStatus(appt *models.Appointment, event Event) (models.AppointmentStatus, error) {
	if targets, ok := transitionTable[appt.Status]; ok {
		if to, ok := targets[event]; ok {
			return to, nil
		}
	}
	return "", &InvalidTransitionError{
		AppointmentID: appt.ID,
		Current:       appt.Status,
		Event:         event,
	}
}

// applyTransition moves the appointment along one edge of the transition
// table inside the caller's transaction. The in-memory struct is only
// updated once the row update succeeds.
func applyTransition(tx *gorm.DB, appt *models.Appointment, event Event) error {
	to, err := nextStatus(appt, event)
	if err != nil {
		return err
	}
	if err := tx.Model(appt).Update("status", to).Error; err != nil {
		return err
	}
	appt.Status = to
	return nil
}
