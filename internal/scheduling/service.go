package scheduling

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"clinic-scheduler-server/internal/config"
	"clinic-scheduler-server/internal/models"
)

// Service owns every appointment status mutation and the derived queue and
// availability views. Handlers never touch Appointment.Status directly.
type Service struct {
	db  *gorm.DB
	cfg config.SchedulingConfig

	// now is swapped out in tests for a fixed clock.
	now func() time.Time

	mu          sync.Mutex
	doctorLocks map[string]*sync.Mutex
}

// NewService creates the scheduling service.
func NewService(db *gorm.DB, cfg config.SchedulingConfig) *Service {
	if cfg.Timezone == nil {
		cfg.Timezone = time.Local
	}
	if cfg.DefaultSlotMinutes <= 0 {
		cfg.DefaultSlotMinutes = 30
	}
	if cfg.DefaultAppointmentMinutes <= 0 {
		cfg.DefaultAppointmentMinutes = 30
	}
	return &Service{
		db:          db,
		cfg:         cfg,
		now:         time.Now,
		doctorLocks: make(map[string]*sync.Mutex),
	}
}

// lockDoctor serializes booking and queue mutations per doctor. Callers for
// different doctors proceed independently.
func (s *Service) lockDoctor(doctorID string) func() {
	s.mu.Lock()
	l, ok := s.doctorLocks[doctorID]
	if !ok {
		l = &sync.Mutex{}
		s.doctorLocks[doctorID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// DayBounds returns the clinic-local [midnight, next midnight) window
// containing t.
func (s *Service) DayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(s.cfg.Timezone)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.cfg.Timezone)
	return start, start.AddDate(0, 0, 1)
}

// ParseClinicTime parses an ISO-8601 timestamp. Values carrying a UTC offset
// are honored as sent; values without one are wall-clock times in the
// clinic's timezone. The UI sends reschedule targets in the offset-less form.
func (s *Service) ParseClinicTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, value, s.cfg.Timezone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// ParseClinicDate parses a YYYY-MM-DD calendar date in the clinic's timezone.
func (s *Service) ParseClinicDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, s.cfg.Timezone)
}

// dayAppointments loads the doctor's non-cancelled appointments for the
// clinic-local day containing t, ordered by start time.
func (s *Service) dayAppointments(tx *gorm.DB, doctorID string, t time.Time) ([]models.Appointment, error) {
	dayStart, dayEnd := s.DayBounds(t)
	var appts []models.Appointment
	err := tx.
		Where("doctor_id = ? AND status NOT IN ? AND start_at >= ? AND start_at < ?",
			doctorID, []models.AppointmentStatus{models.StatusCancelled, models.StatusNoShow}, dayStart, dayEnd).
		Order("start_at asc").
		Find(&appts).Error
	return appts, err
}

// retryRead retries an idempotent read once on infra errors. Mutations are
// never retried; a double transition is worse than a surfaced failure.
func retryRead(fn func() error) error {
	err := fn()
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fn()
	}
	return err
}
