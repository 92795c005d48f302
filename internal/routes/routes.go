package routes

import (
	"clinic-scheduler-server/internal/config"
	"clinic-scheduler-server/internal/handlers"
	"clinic-scheduler-server/internal/middleware"
	"clinic-scheduler-server/internal/models"
	"clinic-scheduler-server/internal/scheduling"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, scheduler *scheduling.Service) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, scheduler)
	queueHandler := handlers.NewQueueHandler(db, scheduler)
	templateHandler := handlers.NewTemplateHandler(scheduler)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		// Auth related (profile, logout)
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management routes (typically admin-only)
		userRoutes := private.Group("/users")
		{
			// Special endpoint to get doctors - accessible by all authenticated users
			userRoutes.GET("/doctors", userHandler.GetDoctors)

			// Patient list for clinic staff
			userRoutes.GET("/doctor-patients", userHandler.GetDoctorPatients)

			// Admin-only routes
			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin)) // Only Admins
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			// Free slots for a doctor on a date. Registered before /:id so the
			// literal path wins.
			appointmentRoutes.GET("/availability", appointmentHandler.GetAvailability)

			// Weekly availability templates, managed by the doctor themselves
			templateRoutes := appointmentRoutes.Group("/templates")
			templateRoutes.Use(middleware.RoleAuthMiddleware(models.RoleDoctor))
			{
				templateRoutes.GET("", templateHandler.ListTemplates)
				templateRoutes.POST("", templateHandler.SaveTemplate)
				templateRoutes.PUT("/:id", templateHandler.UpdateTemplate)
				templateRoutes.DELETE("/:id", templateHandler.DeleteTemplate)
			}

			// Patients book for themselves; staff can book on a patient's behalf
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient, models.RoleDoctor, models.RoleNurse, models.RoleAdmin), appointmentHandler.CreateAppointment)

			// All authenticated users can get their own appointments
			appointmentRoutes.GET("", appointmentHandler.GetAppointments) // Logic inside handler differentiates by role

			// Specific appointment access (Patient involved, Doctor involved, or Admin)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID) // Authorization inside handler

			// Lifecycle transitions (authorization inside handlers)
			appointmentRoutes.PATCH("/:id/confirm", appointmentHandler.ConfirmAppointment)
			appointmentRoutes.PATCH("/:id/reprogram", appointmentHandler.ReprogramAppointment)
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.CancelAppointment)
		}

		// Queue routes - the doctor's daily serving queue
		queueRoutes := private.Group("/queue")
		queueRoutes.Use(middleware.RoleAuthMiddleware(models.RoleDoctor))
		{
			queueRoutes.GET("/join", queueHandler.JoinQueue)
			queueRoutes.GET("/current", queueHandler.GetCurrent)
			queueRoutes.POST("/call-next", queueHandler.CallNext)
			queueRoutes.PUT("/ticket/:id/complete", queueHandler.CompleteTicket)
			queueRoutes.PATCH("/ticket/:id/no-show", queueHandler.NoShowTicket)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
