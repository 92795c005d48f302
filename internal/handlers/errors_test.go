package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clinic-scheduler-server/internal/models"
	"clinic-scheduler-server/internal/scheduling"
)

func TestRespondSchedulingError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing appointment", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"start in past", scheduling.ErrStartInPast, http.StatusBadRequest},
		{"invalid time range", scheduling.ErrInvalidTimeRange, http.StatusBadRequest},
		{"empty queue", scheduling.ErrQueueEmpty, http.StatusNotFound},
		{"slot unavailable", &scheduling.SlotUnavailableError{DoctorID: "d1", StartAt: time.Now(), Reason: "taken"}, http.StatusConflict},
		{"invalid transition", &scheduling.InvalidTransitionError{AppointmentID: "a1", Current: models.StatusConfirmed, Event: scheduling.EventConfirm}, http.StatusConflict},
		{"queue busy", &scheduling.QueueBusyError{DoctorID: "d1", InProgressID: "a1"}, http.StatusConflict},
		{"not in progress", &scheduling.NotInProgressError{AppointmentID: "a1", Status: models.StatusConfirmed}, http.StatusConflict},
		{"notice violation", &scheduling.NoticeViolationError{AppointmentID: "a1", Action: scheduling.EventCancel, Deadline: time.Now()}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			respondSchedulingError(c, tc.err)
			require.Equal(t, tc.want, recorder.Code)
		})
	}
}
