package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/middleware"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/utils"
)

// MessageHandler handles appointment-scoped chat requests. Chat is gated by
// the appointment's ChatUnlocked flag.
type MessageHandler struct {
	DB *gorm.DB
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(db *gorm.DB) *MessageHandler {
	return &MessageHandler{DB: db}
}

// loadForParty fetches the appointment and checks the caller is one of its
// parties. Returns the appointment or writes the error response itself.
func (h *MessageHandler) loadForParty(c *gin.Context, appointmentID, userID string) (*models.Appointment, bool) {
	var appointment models.Appointment
	if err := h.DB.Preload("Doctor").First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}

	if appointment.PatientID != userID && appointment.Doctor.UserID != userID {
		utils.Forbidden(c, "You are not a participant of this appointment.")
		return nil, false
	}
	return &appointment, true
}

// SendMessageRequest represents the request body for sending a chat message.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage handles sending a message inside an appointment chat.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	appointmentID := c.Param("id")

	var req SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Sender ID not found in token")
		return
	}

	appointment, ok := h.loadForParty(c, appointmentID, userID)
	if !ok {
		return
	}

	if !appointment.ChatUnlocked {
		utils.Forbidden(c, "Chat is not unlocked for this appointment.")
		return
	}

	message := models.Message{
		AppointmentID: appointment.ID,
		SenderID:      userID,
		Content:       req.Content,
		Status:        models.MessageStatusSent,
	}
	if err := h.DB.Create(&message).Error; err != nil {
		utils.InternalServerError(c, "Failed to send message: "+err.Error())
		return
	}

	utils.Created(c, "Message sent successfully", message)
}

// GetMessages handles fetching the chat history of an appointment. Messages
// addressed to the caller are marked read on fetch.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	appointmentID := c.Param("id")

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, ok := h.loadForParty(c, appointmentID, userID)
	if !ok {
		return
	}

	var messages []models.Message
	if err := h.DB.Preload("Sender").
		Where("appointment_id = ?", appointment.ID).
		Order("created_at asc").
		Find(&messages).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch messages: "+err.Error())
		return
	}

	now := time.Now()
	for i := range messages {
		if messages[i].SenderID != userID && messages[i].Status == models.MessageStatusSent {
			messages[i].Status = models.MessageStatusRead
			messages[i].ReadAt = &now
			h.DB.Model(&messages[i]).Updates(map[string]interface{}{
				"status":  models.MessageStatusRead,
				"read_at": now,
			})
		}
	}

	utils.Success(c, "Messages fetched successfully", messages)
}
