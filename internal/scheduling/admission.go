package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/meetings"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/notify"
)

// AdmissionController decides whether a booking request is admitted and
// applies its side effects (emergency preemption).
type AdmissionController struct {
	db           *gorm.DB
	availability *AvailabilityIndex
	meetings     *meetings.Client
	sink         notify.Sink
	log          *zap.Logger
}

// NewAdmissionController creates an AdmissionController.
func NewAdmissionController(db *gorm.DB, availability *AvailabilityIndex, meetings *meetings.Client, sink notify.Sink, log *zap.Logger) *AdmissionController {
	return &AdmissionController{
		db:           db,
		availability: availability,
		meetings:     meetings,
		sink:         sink,
		log:          log,
	}
}

// BookingRequest is a validated booking attempt for one slot.
type BookingRequest struct {
	DoctorID  string
	PatientID string
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	Type      models.AppointmentType
	Reason    string
	Amount    float64
}

// Admit validates the request and creates the appointment.
//
// Scheduled bookings must fall inside the doctor's availability window and
// take a free slot; admission fails with ErrDoctorUnavailable, ErrOutsideHours
// or ErrSlotTaken otherwise. Emergency bookings skip the availability check,
// cancel every non-cancelled occupant of the slot and are created confirmed,
// paid and fully unlocked.
func (c *AdmissionController) Admit(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	weekday, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	minute, err := MinuteOfDay(req.Time)
	if err != nil {
		return nil, err
	}

	if req.Type == models.TypeEmergency {
		return c.admitEmergency(ctx, req)
	}

	window, err := c.availability.Window(ctx, req.DoctorID, weekday)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrDoctorUnavailable
		}
		return nil, err
	}
	if !window.IsAvailable {
		return nil, ErrDoctorUnavailable
	}
	inside, err := withinWindow(window, minute)
	if err != nil {
		return nil, err
	}
	if !inside {
		return nil, ErrOutsideHours
	}

	appointment := models.Appointment{
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		AppointmentDate: req.Date,
		AppointmentTime: req.Time,
		Type:            models.TypeScheduled,
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentPending,
		Reason:          req.Reason,
		Amount:          req.Amount,
	}
	appointment.Occupy()

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Friendly pre-check; the unique index on slot_key is what actually
		// closes the race when two bookings pass this concurrently.
		var occupied int64
		if err := tx.Model(&models.Appointment{}).
			Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status <> ?",
				req.DoctorID, req.Date, req.Time, models.StatusCancelled).
			Count(&occupied).Error; err != nil {
			return err
		}
		if occupied > 0 {
			return ErrSlotTaken
		}
		return tx.Create(&appointment).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return &appointment, nil
}

func (c *AdmissionController) admitEmergency(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	now := time.Now()
	appointment := models.Appointment{
		BaseModel:       models.BaseModel{ID: uuid.New().String()},
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		AppointmentDate: req.Date,
		AppointmentTime: req.Time,
		Type:            models.TypeEmergency,
		Status:          models.StatusConfirmed,
		PaymentStatus:   models.PaymentPaid,
		ChatUnlocked:    true,
		VideoUnlocked:   true,
		Reason:          req.Reason,
		Amount:          req.Amount,
	}
	appointment.Occupy()

	details := c.meetings.Placeholder(appointment.ID)
	appointment.Video = models.VideoMeeting{
		Provider:  c.meetings.Provider(),
		MeetingID: details.MeetingID,
		JoinURL:   details.JoinURL,
		HostURL:   details.HostURL,
		Enabled:   true,
		EnabledAt: &now,
	}

	var displaced []models.Appointment
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Defensively cancel every non-cancelled occupant, not just the first.
		if err := tx.
			Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status <> ?",
				req.DoctorID, req.Date, req.Time, models.StatusCancelled).
			Find(&displaced).Error; err != nil {
			return err
		}
		for i := range displaced {
			displaced[i].Status = models.StatusCancelled
			if displaced[i].Notes != "" {
				displaced[i].Notes += "\n"
			}
			displaced[i].Notes += "Cancelled: slot preempted by an emergency booking."
			displaced[i].Release()
			if err := tx.Save(&displaced[i]).Error; err != nil {
				return err
			}
		}
		return tx.Create(&appointment).Error
	})
	if err != nil {
		return nil, err
	}

	// Best-effort fan-out to every displaced patient; the booking has already
	// committed and must not fail on notification problems.
	for _, victim := range displaced {
		c.sink.Append(ctx, victim.PatientID, models.NotificationPreempted,
			"Your appointment was cancelled because an emergency booking took its slot.",
			map[string]interface{}{
				"appointmentId": victim.ID,
				"doctorId":      victim.DoctorID,
				"date":          victim.AppointmentDate,
				"time":          victim.AppointmentTime,
			})
	}
	if len(displaced) > 0 {
		c.log.Info("emergency booking preempted existing appointments",
			zap.String("appointmentId", appointment.ID),
			zap.Int("displaced", len(displaced)))
	}

	return &appointment, nil
}
