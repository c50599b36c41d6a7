package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/middleware"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/scheduling"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/utils"
)

// AvailabilityHandler handles doctor availability window requests.
type AvailabilityHandler struct {
	DB    *gorm.DB
	Index *scheduling.AvailabilityIndex
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(db *gorm.DB, index *scheduling.AvailabilityIndex) *AvailabilityHandler {
	return &AvailabilityHandler{DB: db, Index: index}
}

// UpsertAvailabilityRequest represents the request body for setting a
// weekly availability window.
type UpsertAvailabilityRequest struct {
	DayOfWeek   *int   `json:"dayOfWeek" binding:"required,min=0,max=6"`
	StartTime   string `json:"startTime" binding:"required"`
	EndTime     string `json:"endTime" binding:"required"`
	IsAvailable *bool  `json:"isAvailable"`
}

// UpsertAvailability creates or updates the caller's window for one weekday.
// At most one window per (doctor, weekday) ever exists.
func (h *AvailabilityHandler) UpsertAvailability(c *gin.Context) {
	doctorID := c.Param("id")

	var req UpsertAvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	window, err := h.Index.Upsert(c.Request.Context(), userID, scheduling.UpsertRequest{
		DoctorID:    doctorID,
		DayOfWeek:   *req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: isAvailable,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduling.ErrForbidden):
			utils.Forbidden(c, "Only the owning doctor can change availability.")
		case errors.Is(err, scheduling.ErrNotFound):
			utils.NotFound(c, "Doctor not found")
		case errors.Is(err, scheduling.ErrInvalidTime), errors.Is(err, scheduling.ErrInvalidDate):
			utils.BadRequest(c, err.Error())
		default:
			utils.InternalServerError(c, "Failed to save availability: "+err.Error())
		}
		return
	}

	utils.Success(c, "Availability saved successfully", window)
}

// GetAvailability returns all weekly windows for a doctor.
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	doctorID := c.Param("id")

	windows, err := h.Index.WindowsFor(c.Request.Context(), doctorID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch availability: "+err.Error())
		return
	}

	utils.Success(c, "Availability fetched successfully", windows)
}
