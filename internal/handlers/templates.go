package handlers

import (
	"errors"

	"clinic-scheduler-server/internal/middleware"
	"clinic-scheduler-server/internal/scheduling"
	"clinic-scheduler-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TemplateHandler manages a doctor's weekly availability templates.
// All operations are scoped to the authenticated doctor.
type TemplateHandler struct {
	Scheduler *scheduling.Service
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(scheduler *scheduling.Service) *TemplateHandler {
	return &TemplateHandler{Scheduler: scheduler}
}

// TemplateRequest represents the request body for saving a template.
// DayOfWeek is a pointer so Sunday (0) passes the required check.
type TemplateRequest struct {
	DayOfWeek *int   `json:"dayOfWeek" binding:"required,min=0,max=6"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

// ListTemplates returns the doctor's weekly availability.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	templates, err := h.Scheduler.ListTemplates(c.Request.Context(), doctorID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch templates: "+err.Error())
		return
	}

	utils.Success(c, "Templates fetched successfully", templates)
}

// SaveTemplate upserts availability for one day of the week.
func (h *TemplateHandler) SaveTemplate(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req TemplateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	template, err := h.Scheduler.SaveTemplate(c.Request.Context(), doctorID, scheduling.TemplateInput{
		DayOfWeek: *req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Created(c, "Template saved successfully", template)
}

// UpdateTemplate rewrites an existing template by id.
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req TemplateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	template, err := h.Scheduler.UpdateTemplate(c.Request.Context(), doctorID, c.Param("id"), scheduling.TemplateInput{
		DayOfWeek: *req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Template not found")
			return
		}
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Template updated successfully", template)
}

// DeleteTemplate removes a template. Availability for that day disappears
// immediately; existing bookings are untouched.
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Scheduler.DeleteTemplate(c.Request.Context(), doctorID, c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Template not found")
			return
		}
		utils.InternalServerError(c, "Failed to delete template: "+err.Error())
		return
	}

	utils.Success(c, "Template deleted successfully", nil)
}
