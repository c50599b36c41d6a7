package models

import (
	"fmt"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentType distinguishes regular bookings from emergency ones.
type AppointmentType string

const (
	TypeScheduled AppointmentType = "scheduled"
	TypeEmergency AppointmentType = "emergency"
)

// PaymentStatus is the orthogonal payment substate of an appointment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// VideoMeeting holds the video-call metadata for an appointment.
type VideoMeeting struct {
	Provider     string     `gorm:"size:50" json:"provider,omitempty"`
	MeetingID    string     `gorm:"size:100" json:"meetingId,omitempty"`
	JoinURL      string     `gorm:"size:512" json:"joinUrl,omitempty"`
	HostURL      string     `gorm:"size:512" json:"hostUrl,omitempty"`
	Enabled      bool       `gorm:"default:false" json:"enabled"`
	EnabledAt    *time.Time `json:"enabledAt,omitempty"`
	DisabledAt   *time.Time `json:"disabledAt,omitempty"`
	DoctorInCall bool       `gorm:"default:false" json:"doctorInCall"`
}

// Appointment represents a booked consultation slot.
//
// SlotKey is "<doctor_id>|<date>|<time>" while the appointment is active and
// NULL once cancelled. The unique index on it is what makes the scheduled
// check-then-insert race safe: two concurrent bookings for the same slot
// cannot both commit, the loser gets a duplicate-key error.
type Appointment struct {
	BaseModel
	DoctorID        string            `gorm:"size:36;index;not null" json:"doctorId"`
	PatientID       string            `gorm:"size:36;index;not null" json:"patientId"`
	AppointmentDate string            `gorm:"size:10;not null" json:"appointmentDate"` // YYYY-MM-DD
	AppointmentTime string            `gorm:"size:5;not null" json:"appointmentTime"`  // HH:MM
	SlotKey         *string           `gorm:"size:64;uniqueIndex" json:"-"`
	Type            AppointmentType   `gorm:"size:20;default:'scheduled'" json:"type"`
	Status          AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	PaymentStatus   PaymentStatus     `gorm:"size:20;default:'pending'" json:"paymentStatus"`
	ChatUnlocked    bool              `gorm:"default:false" json:"chatUnlocked"`
	VideoUnlocked   bool              `gorm:"default:false" json:"videoUnlocked"`
	Amount          float64           `json:"amount"`
	Reason          string            `gorm:"size:255" json:"reason,omitempty"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	Video           VideoMeeting      `gorm:"embedded;embeddedPrefix:video_" json:"video"`

	// Relations
	Doctor  Doctor `gorm:"foreignKey:DoctorID" json:"-"`
	Patient User   `gorm:"foreignKey:PatientID" json:"-"`
}

// SlotKeyFor builds the uniqueness key occupied by an active appointment.
func SlotKeyFor(doctorID, date, timeOfDay string) string {
	return fmt.Sprintf("%s|%s|%s", doctorID, date, timeOfDay)
}

// Occupy marks the appointment as holding its slot.
func (a *Appointment) Occupy() {
	key := SlotKeyFor(a.DoctorID, a.AppointmentDate, a.AppointmentTime)
	a.SlotKey = &key
}

// Release frees the slot, typically on cancellation.
func (a *Appointment) Release() {
	a.SlotKey = nil
}

// IsTerminal reports whether no further lifecycle transitions are permitted.
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}
