package models

import (
	"time"
)

// MessageStatus represents the status of a message
type MessageStatus string

const (
	MessageStatusSent MessageStatus = "sent"
	MessageStatusRead MessageStatus = "read"
)

// Message represents a chat message exchanged inside an appointment.
// Chat is only usable while the appointment's ChatUnlocked flag is set.
type Message struct {
	BaseModel
	AppointmentID string        `gorm:"size:36;index;not null" json:"appointmentId"`
	SenderID      string        `gorm:"size:36;index;not null" json:"senderId"`
	Content       string        `gorm:"type:text" json:"content"`
	Status        MessageStatus `gorm:"size:20;default:'sent'" json:"status"`
	ReadAt        *time.Time    `json:"readAt,omitempty"`

	// Relations
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
	Sender      User        `gorm:"foreignKey:SenderID" json:"sender"`
}
