package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/middleware"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/scheduling"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB        *gorm.DB
	Admission *scheduling.AdmissionController
	Lifecycle *scheduling.Lifecycle
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, admission *scheduling.AdmissionController, lifecycle *scheduling.Lifecycle) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Admission: admission, Lifecycle: lifecycle}
}

// respondSchedulingError maps core scheduling errors onto HTTP responses.
// Booking rejections carry their specific reason so the client can guide the
// user to another slot.
func respondSchedulingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrDoctorUnavailable),
		errors.Is(err, scheduling.ErrOutsideHours):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrSlotTaken):
		utils.Conflict(c, err.Error())
	case errors.Is(err, scheduling.ErrInvalidDate), errors.Is(err, scheduling.ErrInvalidTime):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, scheduling.ErrNotFound):
		utils.NotFound(c, "Appointment not found")
	case errors.Is(err, scheduling.ErrForbidden):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, scheduling.ErrInvalidTransition):
		utils.BadRequest(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}

// BookAppointmentRequest represents the request body for booking a slot.
type BookAppointmentRequest struct {
	DoctorID        string `json:"doctorId" binding:"required,uuid"`
	AppointmentDate string `json:"appointmentDate" binding:"required"` // YYYY-MM-DD
	AppointmentTime string `json:"appointmentTime" binding:"required"` // HH:MM
	Type            string `json:"type" binding:"omitempty,oneof=scheduled emergency"`
	Reason          string `json:"reason"`
}

// BookAppointment handles a patient booking a slot with a doctor.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Patient ID not found in token")
		return
	}

	// Verify doctor exists and has been verified by an admin
	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", req.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
		return
	}
	if !doctor.IsVerified {
		utils.BadRequest(c, "This doctor has not been verified yet.")
		return
	}

	bookingType := models.TypeScheduled
	amount := doctor.ConsultationFee
	if req.Type == string(models.TypeEmergency) {
		bookingType = models.TypeEmergency
		amount = doctor.EmergencyFee
	}

	appointment, err := h.Admission.Admit(c.Request.Context(), scheduling.BookingRequest{
		DoctorID:  doctor.ID,
		PatientID: patientID,
		Date:      req.AppointmentDate,
		Time:      req.AppointmentTime,
		Type:      bookingType,
		Reason:    req.Reason,
		Amount:    amount,
	})
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment)
}

// GetAppointmentsForUser handles fetching appointments for the logged-in
// user. Patients see their bookings, doctors their consultations, admins all.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	var appointments []models.Appointment
	query := h.DB.Preload("Patient").Preload("Doctor").Preload("Doctor.User").
		Order("appointment_date asc, appointment_time asc")

	switch userRole {
	case models.RolePatient:
		err := query.Where("patient_id = ?", userID).Find(&appointments).Error
		if err != nil {
			utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
			return
		}
	case models.RoleDoctor:
		var doctor models.Doctor
		if err := h.DB.First(&doctor, "user_id = ?", userID).Error; err != nil {
			utils.NotFound(c, "Doctor profile not found")
			return
		}
		err := query.Where("doctor_id = ?", doctor.ID).Find(&appointments).Error
		if err != nil {
			utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
			return
		}
	case models.RoleAdmin:
		if err := query.Find(&appointments).Error; err != nil {
			utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
			return
		}
	default:
		utils.Forbidden(c, "User role not permitted to view appointments.")
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment by its ID.
// Accessible by the involved patient, the involved doctor, or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").Preload("Doctor.User").
		First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	isPatientInvolved := userID == appointment.PatientID
	isDoctorInvolved := userID == appointment.Doctor.UserID

	if userRole != models.RoleAdmin && !isPatientInvolved && !isDoctorInvolved {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// ConfirmAppointment handles the doctor confirming a pending appointment.
func (h *AppointmentHandler) ConfirmAppointment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Lifecycle.Confirm(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment confirmed successfully", appointment)
}

// CancelAppointmentRequest represents the request body for cancelling.
type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

// CancelAppointment handles cancellation by the patient or the doctor.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	appointment, err := h.Lifecycle.Cancel(c.Request.Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", appointment)
}

// CompleteAppointmentRequest represents the request body for mark-done.
type CompleteAppointmentRequest struct {
	Prescription string `json:"prescription"`
}

// CompleteAppointment handles the doctor marking a consultation done.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	appointment, err := h.Lifecycle.Complete(c.Request.Context(), c.Param("id"), userID, req.Prescription)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Appointment completed successfully", appointment)
}

// TogglePermissionRequest represents the request body for the doctor's
// chat/video permission toggles.
type TogglePermissionRequest struct {
	Enabled *bool  `json:"enabled" binding:"required"`
	JoinURL string `json:"joinUrl"`
}

// ToggleChat handles the doctor flipping the chat unlock flag.
func (h *AppointmentHandler) ToggleChat(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req TogglePermissionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Lifecycle.ToggleChat(c.Request.Context(), c.Param("id"), userID, *req.Enabled)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Chat permission updated", appointment)
}

// ToggleVideo handles the doctor flipping the video unlock flag.
func (h *AppointmentHandler) ToggleVideo(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req TogglePermissionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Lifecycle.ToggleVideo(c.Request.Context(), c.Param("id"), userID, *req.Enabled, req.JoinURL)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Video permission updated", appointment)
}

// PaymentCallbackRequest represents the payment gateway's callback payload.
type PaymentCallbackRequest struct {
	AppointmentID string  `json:"appointmentId" binding:"required,uuid"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status" binding:"required,oneof=success failed"`
}

// PaymentCallback applies a payment gateway callback. Redelivery of the same
// successful event is a no-op.
func (h *AppointmentHandler) PaymentCallback(c *gin.Context) {
	var req PaymentCallbackRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Lifecycle.ApplyPayment(c.Request.Context(),
		req.AppointmentID, req.Amount, req.Status == "success")
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	utils.Success(c, "Payment processed", appointment)
}
