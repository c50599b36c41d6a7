package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/middleware"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/notify"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/utils"
)

// DoctorHandler handles doctor profile and admin verification requests.
type DoctorHandler struct {
	DB   *gorm.DB
	Sink notify.Sink
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB, sink notify.Sink) *DoctorHandler {
	return &DoctorHandler{DB: db, Sink: sink}
}

// GetDoctors handles fetching doctors for booking. Patients only see
// verified profiles; admins see everything.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	userRole, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Preload("User")
	if userRole != models.RoleAdmin {
		query = query.Where("is_verified = ?", true)
	}

	var doctors []models.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetDoctorByID handles fetching a single doctor profile.
func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	doctorID := c.Param("id")

	var doctor models.Doctor
	if err := h.DB.Preload("User").First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Doctor fetched successfully", doctor)
}

// GetMyDoctorProfile returns the doctor profile owned by the caller.
func (h *DoctorHandler) GetMyDoctorProfile(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var doctor models.Doctor
	if err := h.DB.Preload("User").First(&doctor, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Doctor profile fetched successfully", doctor)
}

// GetPendingDoctors handles fetching doctors awaiting verification (admin).
func (h *DoctorHandler) GetPendingDoctors(c *gin.Context) {
	var doctors []models.Doctor
	if err := h.DB.Preload("User").
		Where("status = ?", models.VerificationPending).
		Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch pending doctors: "+err.Error())
		return
	}

	utils.Success(c, "Pending doctors fetched successfully", doctors)
}

// ApproveDoctor handles admin verification of a doctor profile.
func (h *DoctorHandler) ApproveDoctor(c *gin.Context) {
	doctorID := c.Param("id")

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	doctor.IsVerified = true
	doctor.Status = models.VerificationVerified
	doctor.RejectionReason = ""
	if err := h.DB.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to approve doctor: "+err.Error())
		return
	}

	h.Sink.Append(c.Request.Context(), doctor.UserID, models.NotificationDoctorVerified,
		"Your doctor profile has been verified. Patients can now book appointments with you.",
		map[string]interface{}{"doctorId": doctor.ID})

	utils.Success(c, "Doctor approved successfully", doctor)
}

// RejectDoctorRequest represents the request body for rejecting a doctor.
type RejectDoctorRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectDoctor handles admin rejection of a doctor profile. The reason is
// recorded and appended to the rejection history.
func (h *DoctorHandler) RejectDoctor(c *gin.Context) {
	doctorID := c.Param("id")

	var req RejectDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	doctor.IsVerified = false
	doctor.Status = models.VerificationRejected
	doctor.RejectionReason = req.Reason
	if doctor.RejectionHistory != "" {
		doctor.RejectionHistory += "\n"
	}
	doctor.RejectionHistory += req.Reason
	if err := h.DB.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to reject doctor: "+err.Error())
		return
	}

	h.Sink.Append(c.Request.Context(), doctor.UserID, models.NotificationDoctorRejected,
		"Your doctor profile was rejected: "+req.Reason,
		map[string]interface{}{"doctorId": doctor.ID, "reason": req.Reason})

	utils.Success(c, "Doctor rejected", doctor)
}

// DeleteDoctor handles admin removal of a doctor. The cascade also removes
// the linked user, its session and the doctor's availability windows.
func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	doctorID := c.Param("id")

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doctor_id = ?", doctor.ID).Delete(&models.Availability{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Doctor{}, "id = ?", doctor.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", doctor.UserID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", doctor.UserID).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete doctor: "+err.Error())
		return
	}

	utils.Success(c, "Doctor deleted successfully", nil)
}
