package scheduling

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"clinic-scheduler-server/internal/models"
)

// BookingInput carries everything needed to create an appointment.
type BookingInput struct {
	DoctorID        string
	PatientID       string
	StartAt         time.Time
	DurationMinutes int // 0 means the clinic default
	Reason          string
}

// Book creates a new appointment in SCHEDULED. The start must be in the
// future, inside the doctor's template hours and free of overlaps with
// existing non-cancelled bookings.
func (s *Service) Book(ctx context.Context, in BookingInput) (*models.Appointment, error) {
	if in.DurationMinutes <= 0 {
		in.DurationMinutes = s.cfg.DefaultAppointmentMinutes
	}
	if !in.StartAt.After(s.now()) {
		return nil, ErrStartInPast
	}

	unlock := s.lockDoctor(in.DoctorID)
	defer unlock()

	var appt *models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.slotFree(tx, in.DoctorID, in.StartAt, in.DurationMinutes, ""); err != nil {
			return err
		}
		appt = &models.Appointment{
			DoctorID:        in.DoctorID,
			PatientID:       in.PatientID,
			StartAt:         in.StartAt,
			DurationMinutes: in.DurationMinutes,
			Reason:          in.Reason,
			Status:          models.StatusScheduled,
		}
		return tx.Create(appt).Error
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Confirm moves SCHEDULED to CONFIRMED. Confirming an already-CONFIRMED
// appointment fails with InvalidTransitionError rather than silently
// succeeding.
func (s *Service) Confirm(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ?", appointmentID).Error; err != nil {
			return err
		}
		return applyTransition(tx, &appt, EventConfirm)
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Reschedule moves the appointment to a new start in place, preserving its
// identity. Allowed from SCHEDULED or CONFIRMED, only while the current
// start is at least the reschedule notice away, and only onto a free slot.
// The status resets to SCHEDULED so the new time gets re-confirmed.
func (s *Service) Reschedule(ctx context.Context, appointmentID string, newStart time.Time, durationMinutes int) (*models.Appointment, error) {
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
		if _, err := nextStatus(&appt, EventReschedule); err != nil {
			return err
		}
		now := s.now()
		deadline := appt.StartAt.Add(-s.cfg.RescheduleNotice)
		if now.After(deadline) {
			return &NoticeViolationError{AppointmentID: appt.ID, Action: EventReschedule, Deadline: deadline}
		}
		if !newStart.After(now) {
			return ErrStartInPast
		}
		if durationMinutes <= 0 {
			durationMinutes = appt.DurationMinutes
		}
		if err := s.slotFree(tx, appt.DoctorID, newStart, durationMinutes, appt.ID); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"start_at":         newStart,
			"duration_minutes": durationMinutes,
			"status":           models.StatusScheduled,
		}
		if err := tx.Model(&appt).Updates(updates).Error; err != nil {
			return err
		}
		appt.StartAt = newStart
		appt.DurationMinutes = durationMinutes
		appt.Status = models.StatusScheduled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Cancel moves SCHEDULED or CONFIRMED to CANCELLED, provided the start is
// still at least the cancellation notice away.
func (s *Service) Cancel(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ?", appointmentID).Error; err != nil {
			return err
		}
		if _, err := nextStatus(&appt, EventCancel); err != nil {
			return err
		}
		deadline := appt.StartAt.Add(-s.cfg.CancelNotice)
		if s.now().After(deadline) {
			return &NoticeViolationError{AppointmentID: appt.ID, Action: EventCancel, Deadline: deadline}
		}
		return applyTransition(tx, &appt, EventCancel)
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// slotFree verifies the [start, start+duration) interval lies inside the
// doctor's template window for that day and does not overlap any
// non-cancelled appointment. excludeID skips the appointment being
// rescheduled.
func (s *Service) slotFree(tx *gorm.DB, doctorID string, start time.Time, durationMinutes int, excludeID string) error {
	local := start.In(s.cfg.Timezone)

	var tmpl models.ScheduleTemplate
	err := tx.Where("doctor_id = ? AND day_of_week = ?", doctorID, int(local.Weekday())).First(&tmpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &SlotUnavailableError{DoctorID: doctorID, StartAt: start, Reason: "no availability for this day"}
	}
	if err != nil {
		return err
	}

	windowStart, windowEnd, err := s.templateWindow(&tmpl, local)
	if err != nil {
		return err
	}
	if local.Before(windowStart) || local.After(windowEnd) {
		return &SlotUnavailableError{DoctorID: doctorID, StartAt: start, Reason: "outside template hours"}
	}

	appts, err := s.dayAppointments(tx, doctorID, start)
	if err != nil {
		return err
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	for i := range appts {
		if appts[i].ID == excludeID {
			continue
		}
		if appts[i].Overlaps(start, end) {
			return &SlotUnavailableError{DoctorID: doctorID, StartAt: start, Reason: "collides with an existing booking"}
		}
	}
	return nil
}
