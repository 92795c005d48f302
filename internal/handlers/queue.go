package handlers

import (
	"clinic-scheduler-server/internal/middleware"
	"clinic-scheduler-server/internal/models"
	"clinic-scheduler-server/internal/scheduling"
	"clinic-scheduler-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// QueueHandler exposes the doctor's virtual waiting room.
type QueueHandler struct {
	DB        *gorm.DB
	Scheduler *scheduling.Service
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(db *gorm.DB, scheduler *scheduling.Service) *QueueHandler {
	return &QueueHandler{DB: db, Scheduler: scheduler}
}

// JoinQueue returns the authenticated doctor's serving queue for today.
func (h *QueueHandler) JoinQueue(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	queue, err := h.Scheduler.Queue(c.Request.Context(), doctorID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch queue: "+err.Error())
		return
	}

	utils.Success(c, "Queue fetched successfully", gin.H{
		"queue": queue,
		"total": len(queue),
	})
}

// GetCurrent returns the doctor's in-progress appointment, if any.
func (h *QueueHandler) GetCurrent(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	current, err := h.Scheduler.Current(c.Request.Context(), doctorID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch current patient: "+err.Error())
		return
	}

	utils.Success(c, "Current patient fetched successfully", gin.H{"appointment": current})
}

// CallNext promotes the head of the queue to IN_PROGRESS and reports how
// many patients remain waiting.
func (h *QueueHandler) CallNext(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Scheduler.CallNext(c.Request.Context(), doctorID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	queue, err := h.Scheduler.Queue(c.Request.Context(), doctorID)
	if err != nil {
		utils.InternalServerError(c, "Failed to re-derive queue: "+err.Error())
		return
	}

	utils.Success(c, "Next patient called", gin.H{
		"appointment":  appointment,
		"waitingCount": len(queue),
	})
}

// CompleteTicket finishes the doctor's active consultation.
func (h *QueueHandler) CompleteTicket(c *gin.Context) {
	appointment, ok := h.ownTicket(c)
	if !ok {
		return
	}

	completed, err := h.Scheduler.Complete(c.Request.Context(), appointment.ID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment completed", completed)
}

// NoShowTicket records that the called patient never presented.
func (h *QueueHandler) NoShowTicket(c *gin.Context) {
	appointment, ok := h.ownTicket(c)
	if !ok {
		return
	}

	marked, err := h.Scheduler.MarkNoShow(c.Request.Context(), appointment.ID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment marked as no-show", marked)
}

// ownTicket loads the ticket's appointment and verifies it belongs to the
// authenticated doctor.
func (h *QueueHandler) ownTicket(c *gin.Context) (*models.Appointment, bool) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}

	appointmentID := c.Param("id")
	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}

	if appointment.DoctorID != doctorID {
		utils.Forbidden(c, "This appointment belongs to another doctor's queue")
		return nil, false
	}
	return &appointment, true
}
