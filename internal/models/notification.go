package models

import "time"

// Notification types produced by the scheduling core.
const (
	NotificationPreempted       = "appointment_preempted"
	NotificationConfirmed       = "appointment_confirmed"
	NotificationCancelled       = "appointment_cancelled"
	NotificationCompleted       = "appointment_completed"
	NotificationExpired         = "appointment_expired"
	NotificationPaymentReceived = "payment_received"
	NotificationChatEnabled     = "chat_enabled"
	NotificationChatDisabled    = "chat_disabled"
	NotificationVideoEnabled    = "video_enabled"
	NotificationVideoDisabled   = "video_disabled"
	NotificationDoctorVerified  = "doctor_verified"
	NotificationDoctorRejected  = "doctor_rejected"
)

// Notification is an append-only inbox entry addressed to one user.
type Notification struct {
	BaseModel
	UserID  string     `gorm:"size:36;index;not null" json:"userId"`
	Type    string     `gorm:"size:50;not null" json:"type"`
	Message string     `gorm:"type:text" json:"message"`
	Data    string     `gorm:"type:text" json:"data,omitempty"` // JSON-encoded payload
	ReadAt  *time.Time `json:"readAt,omitempty"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
