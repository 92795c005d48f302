package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"clinic-scheduler-server/internal/models"
)

// AvailableSlots returns the ordered free start times for the doctor on the
// given calendar date. A day with no template, or a doctor marked
// unavailable, yields an empty list rather than an error. Past dates may be
// queried; booking into them is rejected separately.
func (s *Service) AvailableSlots(ctx context.Context, doctorID string, date time.Time) ([]time.Time, error) {
	db := s.db.WithContext(ctx)

	var doctor models.User
	err := retryRead(func() error {
		return db.First(&doctor, "id = ? AND role = ?", doctorID, models.RoleDoctor).Error
	})
	if err != nil {
		return nil, err
	}
	if !doctor.IsAvailable {
		return []time.Time{}, nil
	}

	local := date.In(s.cfg.Timezone)
	var tmpl models.ScheduleTemplate
	err = retryRead(func() error {
		return db.Where("doctor_id = ? AND day_of_week = ?", doctorID, int(local.Weekday())).First(&tmpl).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []time.Time{}, nil
	}
	if err != nil {
		return nil, err
	}

	windowStart, windowEnd, err := s.templateWindow(&tmpl, local)
	if err != nil {
		return nil, err
	}

	granularity := doctor.SlotDurationMinutes
	if granularity <= 0 {
		granularity = s.cfg.DefaultSlotMinutes
	}
	step := time.Duration(granularity) * time.Minute

	var booked []models.Appointment
	err = retryRead(func() error {
		var listErr error
		booked, listErr = s.dayAppointments(db, doctorID, windowStart)
		return listErr
	})
	if err != nil {
		return nil, err
	}

	slots := make([]time.Time, 0)
	for t := windowStart; !t.After(windowEnd); t = t.Add(step) {
		if slotTaken(booked, t, t.Add(step)) {
			continue
		}
		slots = append(slots, t)
	}
	return slots, nil
}

func slotTaken(booked []models.Appointment, start, end time.Time) bool {
	for i := range booked {
		if booked[i].Overlaps(start, end) {
			return true
		}
	}
	return false
}

// templateWindow anchors a template's HH:mm bounds onto the calendar day of
// the given clinic-local time.
func (s *Service) templateWindow(tmpl *models.ScheduleTemplate, local time.Time) (time.Time, time.Time, error) {
	startH, startM, err := parseClockTime(tmpl.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endH, endM, err := parseClockTime(tmpl.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	windowStart := time.Date(local.Year(), local.Month(), local.Day(), startH, startM, 0, 0, s.cfg.Timezone)
	windowEnd := time.Date(local.Year(), local.Month(), local.Day(), endH, endM, 0, 0, s.cfg.Timezone)
	return windowStart, windowEnd, nil
}

func parseClockTime(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q: expected HH:mm", value)
	}
	return t.Hour(), t.Minute(), nil
}
