package scheduling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clinic-scheduler-server/internal/models"
)

func TestSaveTemplateUpserts(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)

	created, err := svc.SaveTemplate(context.Background(), doctor.ID, TemplateInput{
		DayOfWeek: monday, StartTime: "08:00", EndTime: "12:00",
	})
	require.NoError(t, err)

	updated, err := svc.SaveTemplate(context.Background(), doctor.ID, TemplateInput{
		DayOfWeek: monday, StartTime: "09:00", EndTime: "13:00",
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID, "saving the same day twice must not create a second row")
	require.Equal(t, "09:00", updated.StartTime)

	var count int64
	require.NoError(t, db.Model(&models.ScheduleTemplate{}).Where("doctor_id = ?", doctor.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestTemplateValidation(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)

	cases := []struct {
		name string
		in   TemplateInput
	}{
		{"day out of range", TemplateInput{DayOfWeek: 7, StartTime: "08:00", EndTime: "12:00"}},
		{"unparseable time", TemplateInput{DayOfWeek: monday, StartTime: "8am", EndTime: "12:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SaveTemplate(context.Background(), doctor.ID, tc.in)
			require.Error(t, err)
		})
	}

	t.Run("end before start", func(t *testing.T) {
		_, err := svc.SaveTemplate(context.Background(), doctor.ID, TemplateInput{
			DayOfWeek: monday, StartTime: "12:00", EndTime: "08:00",
		})
		require.ErrorIs(t, err, ErrInvalidTimeRange)
	})
}

func TestUpdateTemplateMovesDay(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)
	const tuesday = 2
	seedTemplate(t, db, doctor.ID, monday, "08:00", "12:00")
	moving := seedTemplate(t, db, doctor.ID, tuesday, "14:00", "18:00")

	// Moving Tuesday's template onto Monday replaces Monday's.
	updated, err := svc.UpdateTemplate(context.Background(), doctor.ID, moving.ID, TemplateInput{
		DayOfWeek: monday, StartTime: "14:00", EndTime: "18:00",
	})
	require.NoError(t, err)
	require.Equal(t, monday, updated.DayOfWeek)

	templates, err := svc.ListTemplates(context.Background(), doctor.ID)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	require.Equal(t, moving.ID, templates[0].ID)
}

func TestUpdateTemplateScopedToOwner(t *testing.T) {
	svc, db := newTestService(t)
	owner := seedUser(t, db, models.RoleDoctor)
	other := seedUser(t, db, models.RoleDoctor)
	tmpl := seedTemplate(t, db, owner.ID, monday, "08:00", "12:00")

	_, err := svc.UpdateTemplate(context.Background(), other.ID, tmpl.ID, TemplateInput{
		DayOfWeek: monday, StartTime: "09:00", EndTime: "13:00",
	})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteTemplate(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)
	tmpl := seedTemplate(t, db, doctor.ID, monday, "08:00", "12:00")

	require.NoError(t, svc.DeleteTemplate(context.Background(), doctor.ID, tmpl.ID))
	require.ErrorIs(t, svc.DeleteTemplate(context.Background(), doctor.ID, tmpl.ID), gorm.ErrRecordNotFound)

	templates, err := svc.ListTemplates(context.Background(), doctor.ID)
	require.NoError(t, err)
	require.Empty(t, templates)
}

func TestListTemplatesOrderedByDay(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)
	seedTemplate(t, db, doctor.ID, 5, "08:00", "12:00")
	seedTemplate(t, db, doctor.ID, 1, "08:00", "12:00")
	seedTemplate(t, db, doctor.ID, 3, "08:00", "12:00")

	templates, err := svc.ListTemplates(context.Background(), doctor.ID)
	require.NoError(t, err)
	require.Len(t, templates, 3)
	require.Equal(t, []int{1, 3, 5}, []int{templates[0].DayOfWeek, templates[1].DayOfWeek, templates[2].DayOfWeek})
}
