package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/auth"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/config"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/handlers"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/meetings"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/middleware"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/notify"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/scheduling"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger) {
	// Shared collaborators
	sessions := auth.NewStore(db, cfg)
	sink := notify.NewDBSink(db, log)
	mailer := notify.NewLogMailer(log, cfg.Mailer.DefaultFrom)
	meetingClient := meetings.New(cfg.Meeting, log)

	// Core scheduling services
	availabilityIndex := scheduling.NewAvailabilityIndex(db)
	admission := scheduling.NewAdmissionController(db, availabilityIndex, meetingClient, sink, log)
	lifecycle := scheduling.NewLifecycle(db, meetingClient, sink, mailer, log)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg, sessions)
	doctorHandler := handlers.NewDoctorHandler(db, sink)
	availabilityHandler := handlers.NewAvailabilityHandler(db, availabilityIndex)
	appointmentHandler := handlers.NewAppointmentHandler(db, admission, lifecycle)
	messageHandler := handlers.NewMessageHandler(db)
	prescriptionHandler := handlers.NewPrescriptionHandler(db)
	notificationHandler := handlers.NewNotificationHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/register-doctor", authHandler.RegisterDoctor)
			authRoutes.POST("/login", authHandler.Login)
		}

		// Payment gateway callback; authenticated by gateway signature at the
		// proxy layer, idempotent on redelivery.
		public.POST("/payments/callback", appointmentHandler.PaymentCallback)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg, sessions))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Doctor discovery and admin verification
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", doctorHandler.GetDoctors)
			doctorRoutes.GET("/me", middleware.RoleAuthMiddleware(models.RoleDoctor), doctorHandler.GetMyDoctorProfile)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctorByID)

			// Availability windows (read for everyone, write for the owner)
			doctorRoutes.GET("/:id/availability", availabilityHandler.GetAvailability)
			doctorRoutes.PUT("/:id/availability", middleware.RoleAuthMiddleware(models.RoleDoctor), availabilityHandler.UpsertAvailability)

			// Admin-only verification actions
			adminRoutes := doctorRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.GET("/pending", doctorHandler.GetPendingDoctors)
				adminRoutes.PATCH("/:id/approve", doctorHandler.ApproveDoctor)
				adminRoutes.PATCH("/:id/reject", doctorHandler.RejectDoctor)
				adminRoutes.DELETE("/:id", doctorHandler.DeleteDoctor)
			}
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.BookAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)

			// Lifecycle transitions (ownership checked in the services)
			appointmentRoutes.PATCH("/:id/confirm", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.ConfirmAppointment)
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.CancelAppointment)
			appointmentRoutes.PATCH("/:id/complete", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.CompleteAppointment)
			appointmentRoutes.PATCH("/:id/chat", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.ToggleChat)
			appointmentRoutes.PATCH("/:id/video", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.ToggleVideo)

			// Appointment-scoped chat, gated by the chat unlock flag
			appointmentRoutes.POST("/:id/messages", messageHandler.SendMessage)
			appointmentRoutes.GET("/:id/messages", messageHandler.GetMessages)
		}

		// Prescription routes
		prescriptionRoutes := private.Group("/prescriptions")
		{
			prescriptionRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), prescriptionHandler.CreatePrescription)
			prescriptionRoutes.GET("/mine", middleware.RoleAuthMiddleware(models.RolePatient), prescriptionHandler.GetMyPrescriptions)
		}

		// Notification inbox
		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.GetNotifications)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkNotificationRead)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
