package scheduling

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"clinic-scheduler-server/internal/config"
	"clinic-scheduler-server/internal/models"
)

// testNow is the fixed clock for all scheduling tests: Monday 07:00, clinic
// time, before the working day starts.
var testNow = time.Date(2026, time.March, 2, 7, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := models.InitDB(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	svc := NewService(db, config.SchedulingConfig{
		Timezone:                  time.UTC,
		RescheduleNotice:          24 * time.Hour,
		CancelNotice:              4 * time.Hour,
		DefaultSlotMinutes:        30,
		DefaultAppointmentMinutes: 30,
	})
	svc.now = func() time.Time { return testNow }
	return svc, db
}

var userSeq int

func seedUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	userSeq++
	user := &models.User{
		Email:               fmt.Sprintf("%s%d@clinic.test", role, userSeq),
		FirstName:           "Test",
		LastName:            string(role),
		Role:                role,
		SlotDurationMinutes: 30,
		IsAvailable:         true,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedTemplate(t *testing.T, db *gorm.DB, doctorID string, day int, start, end string) *models.ScheduleTemplate {
	t.Helper()
	tmpl := &models.ScheduleTemplate{
		DoctorID:  doctorID,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
	}
	require.NoError(t, db.Create(tmpl).Error)
	return tmpl
}

func seedAppointment(t *testing.T, db *gorm.DB, doctorID, patientID string, start time.Time, status models.AppointmentStatus) *models.Appointment {
	t.Helper()
	appt := &models.Appointment{
		DoctorID:        doctorID,
		PatientID:       patientID,
		StartAt:         start,
		DurationMinutes: 30,
		Status:          status,
	}
	require.NoError(t, db.Create(appt).Error)
	return appt
}

func clinicTime(hour, minute int) time.Time {
	return time.Date(testNow.Year(), testNow.Month(), testNow.Day(), hour, minute, 0, 0, time.UTC)
}

func TestParseClinicTime(t *testing.T) {
	svc, _ := newTestService(t)

	t.Run("offset-less values are clinic wall-clock time", func(t *testing.T) {
		got, err := svc.ParseClinicTime("2026-03-02T09:00:00")
		require.NoError(t, err)
		require.True(t, got.Equal(clinicTime(9, 0)))

		short, err := svc.ParseClinicTime("2026-03-02T09:00")
		require.NoError(t, err)
		require.True(t, short.Equal(got))
	})

	t.Run("explicit offsets are honored", func(t *testing.T) {
		got, err := svc.ParseClinicTime("2026-03-02T09:00:00+02:00")
		require.NoError(t, err)
		require.True(t, got.Equal(clinicTime(7, 0)))
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := svc.ParseClinicTime("tomorrow at nine")
		require.Error(t, err)
	})
}

func TestDayBounds(t *testing.T) {
	svc, _ := newTestService(t)

	start, end := svc.DayBounds(clinicTime(15, 42))
	require.True(t, start.Equal(clinicTime(0, 0)))
	require.Equal(t, 24*time.Hour, end.Sub(start))
}
