package handlers

import (
	"errors"

	"clinic-scheduler-server/internal/scheduling"
	"clinic-scheduler-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondSchedulingError maps the scheduling error taxonomy onto HTTP
// statuses. Error messages carry the appointment/doctor context so the
// caller can decide whether to retry or prompt the user.
func respondSchedulingError(c *gin.Context, err error) {
	var (
		slotErr       *scheduling.SlotUnavailableError
		transitionErr *scheduling.InvalidTransitionError
		noticeErr     *scheduling.NoticeViolationError
		busyErr       *scheduling.QueueBusyError
		notActiveErr  *scheduling.NotInProgressError
	)

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.NotFound(c, "Appointment not found")
	case errors.Is(err, scheduling.ErrStartInPast),
		errors.Is(err, scheduling.ErrInvalidTimeRange):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrQueueEmpty):
		utils.NotFound(c, err.Error())
	case errors.As(err, &slotErr),
		errors.As(err, &transitionErr),
		errors.As(err, &busyErr),
		errors.As(err, &notActiveErr):
		utils.Conflict(c, err.Error())
	case errors.As(err, &noticeErr):
		utils.UnprocessableEntity(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}
