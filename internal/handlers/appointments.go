package handlers

import (
	"time"

	"clinic-scheduler-server/internal/middleware"
	"clinic-scheduler-server/internal/models"
	"clinic-scheduler-server/internal/scheduling"
	"clinic-scheduler-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB        *gorm.DB
	Scheduler *scheduling.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, scheduler *scheduling.Service) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Scheduler: scheduler}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
// StartAt is an ISO-8601 timestamp; without a UTC offset it is read as
// clinic-local time.
type CreateAppointmentRequest struct {
	DoctorID        string `json:"doctorId" binding:"required,uuid"`
	PatientID       string `json:"patientId" binding:"required,uuid"`
	StartAt         string `json:"startAt" binding:"required"`
	DurationMinutes int    `json:"durationMinutes" binding:"omitempty,min=5,max=240"`
	Reason          string `json:"reason"`
}

// CreateAppointment handles booking a new appointment.
// Typically initiated by a patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RolePatient && userID != req.PatientID {
		utils.Forbidden(c, "Patients can only book appointments for themselves.")
		return
	}

	// Verify doctor exists and is a doctor
	var doctor models.User
	if err := h.DB.Where("id = ? AND role = ?", req.DoctorID, models.RoleDoctor).First(&doctor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found or user is not a doctor")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
		return
	}
	// Verify patient exists
	var patient models.User
	if err := h.DB.Where("id = ? AND role = ?", req.PatientID, models.RolePatient).First(&patient).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	startAt, err := h.Scheduler.ParseClinicTime(req.StartAt)
	if err != nil {
		utils.BadRequest(c, "Invalid startAt: "+err.Error())
		return
	}

	appointment, err := h.Scheduler.Book(c.Request.Context(), scheduling.BookingInput{
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		StartAt:         startAt,
		DurationMinutes: req.DurationMinutes,
		Reason:          req.Reason,
	})
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointments handles fetching appointments for the logged-in user,
// optionally filtered by doctor and calendar date.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Preload("Patient").Preload("Doctor").Order("start_at asc")

	switch userRole {
	case models.RolePatient:
		query = query.Where("patient_id = ?", userID)
	case models.RoleDoctor:
		query = query.Where("doctor_id = ?", userID)
	case models.RoleAdmin, models.RoleNurse:
		// Admins and nurses see the whole board and may narrow by doctor.
		if doctorID := c.Query("doctorId"); doctorID != "" {
			query = query.Where("doctor_id = ?", doctorID)
		}
	default:
		utils.Forbidden(c, "User role not permitted to view appointments this way.")
		return
	}

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := h.Scheduler.ParseClinicDate(dateStr)
		if err != nil {
			utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD")
			return
		}
		dayStart, dayEnd := h.Scheduler.DayBounds(date)
		query = query.Where("start_at >= ? AND start_at < ?", dayStart, dayEnd)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment by its ID.
// Accessible by involved patient, doctor, or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !h.canAccess(c, &appointment) {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// ConfirmAppointment moves a SCHEDULED appointment to CONFIRMED.
// Performed by the involved doctor or an admin.
func (h *AppointmentHandler) ConfirmAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole != models.RoleAdmin && !(userRole == models.RoleDoctor && userID == appointment.DoctorID) {
		utils.Forbidden(c, "You are not authorized to confirm this appointment")
		return
	}

	confirmed, err := h.Scheduler.Confirm(c.Request.Context(), appointmentID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment confirmed successfully", confirmed)
}

// ReprogramAppointmentRequest represents the request body for rescheduling.
type ReprogramAppointmentRequest struct {
	NewStartAt      string `json:"newStartAt" binding:"required"`
	DurationMinutes int    `json:"durationMinutes" binding:"omitempty,min=5,max=240"`
}

// ReprogramAppointment moves an appointment to a new start time in place,
// keeping its identity and history.
func (h *AppointmentHandler) ReprogramAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var req ReprogramAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !h.canAccess(c, &appointment) {
		utils.Forbidden(c, "You are not authorized to reschedule this appointment.")
		return
	}

	newStartAt, err := h.Scheduler.ParseClinicTime(req.NewStartAt)
	if err != nil {
		utils.BadRequest(c, "Invalid newStartAt: "+err.Error())
		return
	}

	rescheduled, err := h.Scheduler.Reschedule(c.Request.Context(), appointmentID, newStartAt, req.DurationMinutes)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", rescheduled)
}

// CancelAppointment cancels an appointment, honoring the minimum
// cancellation notice.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !h.canAccess(c, &appointment) {
		utils.Forbidden(c, "You are not authorized to cancel this appointment.")
		return
	}

	if _, err := h.Scheduler.Cancel(c.Request.Context(), appointmentID); err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", gin.H{"success": true})
}

// GetAvailability returns the free bookable start times for a doctor on a
// date. The UI sends the date under "fecha"; "date" is accepted too.
func (h *AppointmentHandler) GetAvailability(c *gin.Context) {
	doctorID := c.Query("doctor_id")
	dateStr := c.Query("fecha")
	if dateStr == "" {
		dateStr = c.Query("date")
	}
	if doctorID == "" || dateStr == "" {
		utils.BadRequest(c, "doctor_id and fecha are required")
		return
	}

	date, err := h.Scheduler.ParseClinicDate(dateStr)
	if err != nil {
		utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	slots, err := h.Scheduler.AvailableSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
			return
		}
		utils.InternalServerError(c, "Failed to compute availability: "+err.Error())
		return
	}

	isoSlots := make([]string, len(slots))
	for i, slot := range slots {
		isoSlots[i] = slot.Format(time.RFC3339)
	}

	utils.Success(c, "Availability fetched successfully", gin.H{"slots": isoSlots})
}

// canAccess reports whether the caller is the involved patient, the involved
// doctor, or an admin.
func (h *AppointmentHandler) canAccess(c *gin.Context, appointment *models.Appointment) bool {
	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	if userRole == models.RoleAdmin {
		return true
	}
	return userID == appointment.PatientID || userID == appointment.DoctorID
}
