package models

// Availability is a recurring weekly open-hours window for a doctor.
// The composite unique index keeps at most one window per (doctor, weekday).
// Times are minute-granularity "HH:MM" strings; the window is half-open,
// so EndTime itself is not bookable.
type Availability struct {
	BaseModel
	DoctorID    string `gorm:"size:36;not null;uniqueIndex:idx_doctor_day" json:"doctorId"`
	DayOfWeek   int    `gorm:"not null;uniqueIndex:idx_doctor_day" json:"dayOfWeek"` // 0=Sunday .. 6=Saturday
	StartTime   string `gorm:"size:5;not null" json:"startTime"`
	EndTime     string `gorm:"size:5;not null" json:"endTime"`
	IsAvailable bool   `gorm:"default:true" json:"isAvailable"`

	// Relations
	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"-"`
}
