package models

// VerificationStatus represents the admin review state of a doctor profile.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Doctor represents a doctor profile owned 1:1 by a User with role doctor.
type Doctor struct {
	BaseModel
	UserID           string             `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialization   string             `gorm:"size:100" json:"specialization"`
	Qualification    string             `gorm:"size:255" json:"qualification,omitempty"`
	ConsultationFee  float64            `json:"consultationFee"`
	EmergencyFee     float64            `json:"emergencyFee"`
	IsVerified       bool               `gorm:"default:false" json:"isVerified"`
	Status           VerificationStatus `gorm:"size:20;default:'pending'" json:"status"`
	RejectionReason  string             `gorm:"size:255" json:"rejectionReason,omitempty"`
	RejectionHistory string             `gorm:"type:text" json:"-"`

	// Relations
	User           User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Availabilities []Availability `gorm:"foreignKey:DoctorID" json:"-"`
	Appointments   []Appointment  `gorm:"foreignKey:DoctorID" json:"-"`
}
