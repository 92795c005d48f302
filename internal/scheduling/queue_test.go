package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"clinic-scheduler-server/internal/models"
)

func TestQueueOrderAndPositions(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)
	patient := seedUser(t, db, models.RolePatient)

	// Inserted out of order; the queue must sort by start time.
	seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(9, 0), models.StatusConfirmed)
	seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(8, 0), models.StatusConfirmed)
	seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(10, 0), models.StatusConfirmed)

	// None of these belong in the queue.
	seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(8, 30), models.StatusScheduled)
	seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(9, 30), models.StatusCancelled)
	seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(9, 0).AddDate(0, 0, 1), models.StatusConfirmed)

	queue, err := svc.Queue(context.Background(), doctor.ID)
	require.NoError(t, err)
	require.Len(t, queue, 3)

	require.True(t, queue[0].Appointment.StartAt.Equal(clinicTime(8, 0)))
	require.True(t, queue[1].Appointment.StartAt.Equal(clinicTime(9, 0)))
	require.True(t, queue[2].Appointment.StartAt.Equal(clinicTime(10, 0)))
	for i, entry := range queue {
		require.Equal(t, i+1, entry.Position)
	}
}

func TestCurrentWithNobodyServing(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)

	current, err := svc.Current(context.Background(), doctor.ID)
	require.NoError(t, err)
	require.Nil(t, current)
}

func TestCallNextPromotesEarliest(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)
	patient := seedUser(t, db, models.RolePatient)

	first := seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(8, 0), models.StatusConfirmed)
	seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(9, 0), models.StatusConfirmed)

	called, err := svc.CallNext(context.Background(), doctor.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, called.ID)
	require.Equal(t, models.StatusInProgress, called.Status)

	current, err := svc.Current(context.Background(), doctor.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	require.Equal(t, first.ID, current.ID)

	// The called appointment leaves the queue; the rest close ranks.
	queue, err := svc.Queue(context.Background(), doctor.ID)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, 1, queue[0].Position)
	require.True(t, queue[0].Appointment.StartAt.Equal(clinicTime(9, 0)))
}

func TestCallNextWhileServing(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)
	patient := seedUser(t, db, models.RolePatient)

	seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(8, 0), models.StatusConfirmed)
	seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(9, 0), models.StatusConfirmed)

	_, err := svc.CallNext(context.Background(), doctor.ID)
	require.NoError(t, err)

	_, err = svc.CallNext(context.Background(), doctor.ID)
	var busy *QueueBusyError
	require.ErrorAs(t, err, &busy)
	require.Equal(t, doctor.ID, busy.DoctorID)
}

func TestCallNextEmptyQueue(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)

	_, err := svc.CallNext(context.Background(), doctor.ID)
	require.ErrorIs(t, err, ErrQueueEmpty)
}

func TestCallNextConcurrent(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)
	patient := seedUser(t, db, models.RolePatient)

	seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(8, 0), models.StatusConfirmed)
	seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(9, 0), models.StatusConfirmed)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CallNext(context.Background(), doctor.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var busy *QueueBusyError
		require.ErrorAs(t, err, &busy)
	}
	require.Equal(t, 1, successes, "exactly one caller may win")

	var inProgress int64
	require.NoError(t, db.Model(&models.Appointment{}).
		Where("doctor_id = ? AND status = ?", doctor.ID, models.StatusInProgress).
		Count(&inProgress).Error)
	require.EqualValues(t, 1, inProgress)
}

func TestCompleteAdvancesQueue(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)
	patient := seedUser(t, db, models.RolePatient)

	first := seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(8, 0), models.StatusConfirmed)
	second := seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(9, 0), models.StatusConfirmed)

	_, err := svc.CallNext(context.Background(), doctor.ID)
	require.NoError(t, err)

	completed, err := svc.Complete(context.Background(), first.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, completed.Status)

	queue, err := svc.Queue(context.Background(), doctor.ID)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, 1, queue[0].Position)
	require.Equal(t, second.ID, queue[0].Appointment.ID)

	called, err := svc.CallNext(context.Background(), doctor.ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, called.ID)
}

func TestMarkNoShowIsTerminal(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)
	patient := seedUser(t, db, models.RolePatient)
	appt := seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(8, 0), models.StatusConfirmed)

	_, err := svc.CallNext(context.Background(), doctor.ID)
	require.NoError(t, err)

	marked, err := svc.MarkNoShow(context.Background(), appt.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusNoShow, marked.Status)
	require.True(t, marked.Status.IsTerminal())

	_, err = svc.Complete(context.Background(), appt.ID)
	var notInProgress *NotInProgressError
	require.True(t, errors.As(err, &notInProgress))
}

func TestCompleteRequiresInProgress(t *testing.T) {
	svc, db := newTestService(t)
	doctor := seedUser(t, db, models.RoleDoctor)
	patient := seedUser(t, db, models.RolePatient)
	appt := seedAppointment(t, db, doctor.ID, patient.ID, clinicTime(8, 0), models.StatusConfirmed)

	_, err := svc.Complete(context.Background(), appt.ID)
	var notInProgress *NotInProgressError
	require.ErrorAs(t, err, &notInProgress)
	require.Equal(t, models.StatusConfirmed, notInProgress.Status)
}
