package scheduling

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"clinic-scheduler-server/internal/models"
)

// QueueEntry is one position in a doctor's serving queue. Positions are
// recomputed from the sorted CONFIRMED set on every read; they are ranks,
// not identifiers.
type QueueEntry struct {
	Position    int                `json:"position"`
	Appointment models.Appointment `json:"appointment"`
}

// Queue returns today's CONFIRMED appointments for the doctor, ordered by
// start time, each assigned a contiguous 1-based position.
func (s *Service) Queue(ctx context.Context, doctorID string) ([]QueueEntry, error) {
	dayStart, dayEnd := s.DayBounds(s.now())

	var appts []models.Appointment
	err := retryRead(func() error {
		return s.db.WithContext(ctx).
			Preload("Patient").
			Where("doctor_id = ? AND status = ? AND start_at >= ? AND start_at < ?",
				doctorID, models.StatusConfirmed, dayStart, dayEnd).
			Order("start_at asc").
			Find(&appts).Error
	})
	if err != nil {
		return nil, err
	}

	entries := make([]QueueEntry, len(appts))
	for i := range appts {
		entries[i] = QueueEntry{Position: i + 1, Appointment: appts[i]}
	}
	return entries, nil
}

// Current returns the doctor's IN_PROGRESS appointment, or nil if the doctor
// is not serving anyone.
func (s *Service) Current(ctx context.Context, doctorID string) (*models.Appointment, error) {
	var appt models.Appointment
	err := retryRead(func() error {
		return s.db.WithContext(ctx).
			Preload("Patient").
			Where("doctor_id = ? AND status = ?", doctorID, models.StatusInProgress).
			First(&appt).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// CallNext promotes the head of the doctor's queue to IN_PROGRESS. Calls for
// the same doctor are serialized; at most one appointment per doctor is ever
// IN_PROGRESS.
func (s *Service) CallNext(ctx context.Context, doctorID string) (*models.Appointment, error) {
	unlock := s.lockDoctor(doctorID)
	defer unlock()

	var next models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Appointment
		err := tx.Where("doctor_id = ? AND status = ?", doctorID, models.StatusInProgress).
			First(&current).Error
		if err == nil {
			return &QueueBusyError{DoctorID: doctorID, InProgressID: current.ID}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		dayStart, dayEnd := s.DayBounds(s.now())
		err = tx.Where("doctor_id = ? AND status = ? AND start_at >= ? AND start_at < ?",
			doctorID, models.StatusConfirmed, dayStart, dayEnd).
			Order("start_at asc").
			First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQueueEmpty
		}
		if err != nil {
			return err
		}
		return applyTransition(tx, &next, EventCallNext)
	})
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// Complete finishes the doctor's active consultation.
func (s *Service) Complete(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return s.finishCurrent(ctx, appointmentID, EventComplete)
}

// MarkNoShow records that the called patient never showed up.
func (s *Service) MarkNoShow(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return s.finishCurrent(ctx, appointmentID, EventNoShow)
}

func (s *Service) finishCurrent(ctx context.Context, appointmentID string, event Event) (*models.Appointment, error) {
	var probe models.Appointment
	if err := s.db.WithContext(ctx).First(&probe, "id = ?", appointmentID).Error; err != nil {
		return nil, err
	}

	unlock := s.lockDoctor(probe.DoctorID)
	defer unlock()

	var appt models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ?", appointmentID).Error; err != nil {
			return err
		}
		if appt.Status != models.StatusInProgress {
			return &NotInProgressError{AppointmentID: appt.ID, Status: appt.Status}
		}
		return applyTransition(tx, &appt, event)
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}
