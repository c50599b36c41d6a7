package models

// Prescription represents medication instructions a doctor attaches to an
// appointment, visible to the patient after the consultation.
type Prescription struct {
	BaseModel
	AppointmentID string `gorm:"size:36;index;not null" json:"appointmentId"`
	DoctorID      string `gorm:"size:36;index;not null" json:"doctorId"`
	PatientID     string `gorm:"size:36;index;not null" json:"patientId"`
	Medication    string `gorm:"size:255;not null" json:"medication"`
	Dosage        string `gorm:"size:100" json:"dosage"`
	Instructions  string `gorm:"type:text" json:"instructions"`

	// Relations
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
	Doctor      Doctor      `gorm:"foreignKey:DoctorID" json:"-"`
	Patient     User        `gorm:"foreignKey:PatientID" json:"-"`
}
