package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/meetings"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/notify"
)

// Lifecycle applies appointment state transitions and their side effects.
// Every transition decides success on its storage write alone; notification
// and email failures are logged by the sinks and never propagate.
type Lifecycle struct {
	db       *gorm.DB
	meetings *meetings.Client
	sink     notify.Sink
	mailer   notify.Mailer
	log      *zap.Logger
}

// NewLifecycle creates a Lifecycle service.
func NewLifecycle(db *gorm.DB, meetings *meetings.Client, sink notify.Sink, mailer notify.Mailer, log *zap.Logger) *Lifecycle {
	return &Lifecycle{db: db, meetings: meetings, sink: sink, mailer: mailer, log: log}
}

func (l *Lifecycle) load(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := l.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Doctor.User").
		Preload("Patient").
		First(&appointment, "id = ?", appointmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appointment, nil
}

// save persists the appointment without touching its preloaded associations.
func (l *Lifecycle) save(ctx context.Context, appointment *models.Appointment) error {
	return l.db.WithContext(ctx).Omit(clause.Associations).Save(appointment).Error
}

// Confirm moves a pending appointment to confirmed and unlocks chat and
// video. Only the owning doctor may confirm.
func (l *Lifecycle) Confirm(ctx context.Context, appointmentID, doctorUserID string) (*models.Appointment, error) {
	appointment, err := l.load(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Doctor.UserID != doctorUserID {
		return nil, ErrForbidden
	}
	if appointment.Status != models.StatusPending {
		return nil, ErrInvalidTransition
	}

	appointment.Status = models.StatusConfirmed
	appointment.ChatUnlocked = true
	appointment.VideoUnlocked = true
	if err := l.save(ctx, appointment); err != nil {
		return nil, err
	}

	l.sink.Append(ctx, appointment.PatientID, models.NotificationConfirmed,
		"Your appointment has been confirmed by the doctor.",
		appointmentData(appointment))
	l.mailer.Send(appointment.Patient.Email, "Appointment confirmed",
		fmt.Sprintf("Your appointment on %s at %s has been confirmed.",
			appointment.AppointmentDate, appointment.AppointmentTime), "")
	return appointment, nil
}

// Cancel cancels a pending or confirmed appointment. The patient or the
// owning doctor may cancel; the other party is notified.
func (l *Lifecycle) Cancel(ctx context.Context, appointmentID, callerUserID, reason string) (*models.Appointment, error) {
	appointment, err := l.load(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	byPatient := appointment.PatientID == callerUserID
	byDoctor := appointment.Doctor.UserID == callerUserID
	if !byPatient && !byDoctor {
		return nil, ErrForbidden
	}
	if appointment.Status != models.StatusPending && appointment.Status != models.StatusConfirmed {
		return nil, ErrInvalidTransition
	}

	appointment.Status = models.StatusCancelled
	appointment.Release()
	if reason != "" {
		if appointment.Notes != "" {
			appointment.Notes += "\n"
		}
		appointment.Notes += "Cancelled: " + reason
	}
	if err := l.save(ctx, appointment); err != nil {
		return nil, err
	}

	otherParty := appointment.PatientID
	if byPatient {
		otherParty = appointment.Doctor.UserID
	}
	l.sink.Append(ctx, otherParty, models.NotificationCancelled,
		"The appointment has been cancelled.", appointmentData(appointment))
	return appointment, nil
}

// Complete marks a confirmed appointment done. Chat is forced locked, payment
// is forced paid and an optional prescription rides on the completion notice.
func (l *Lifecycle) Complete(ctx context.Context, appointmentID, doctorUserID, prescription string) (*models.Appointment, error) {
	appointment, err := l.load(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Doctor.UserID != doctorUserID {
		return nil, ErrForbidden
	}
	if appointment.Status != models.StatusConfirmed {
		return nil, ErrInvalidTransition
	}

	appointment.Status = models.StatusCompleted
	appointment.ChatUnlocked = false
	appointment.PaymentStatus = models.PaymentPaid
	if err := l.save(ctx, appointment); err != nil {
		return nil, err
	}

	data := appointmentData(appointment)
	if prescription != "" {
		data["prescription"] = prescription
	}
	l.sink.Append(ctx, appointment.PatientID, models.NotificationCompleted,
		"Your consultation has been completed.", data)
	l.mailer.Send(appointment.Patient.Email, "Consultation completed",
		"Your consultation has been marked as completed by the doctor.", "")
	return appointment, nil
}

// ApplyPayment applies a payment-gateway callback for the appointment.
// Redelivery of an already applied successful payment is a no-op: it must
// not unlock twice or emit duplicate notifications.
func (l *Lifecycle) ApplyPayment(ctx context.Context, appointmentID string, amount float64, succeeded bool) (*models.Appointment, error) {
	appointment, err := l.load(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if !succeeded {
		if appointment.PaymentStatus == models.PaymentPaid {
			return appointment, nil
		}
		appointment.PaymentStatus = models.PaymentFailed
		if err := l.save(ctx, appointment); err != nil {
			return nil, err
		}
		return appointment, nil
	}

	if appointment.PaymentStatus == models.PaymentPaid {
		return appointment, nil
	}

	appointment.PaymentStatus = models.PaymentPaid
	if amount > 0 {
		appointment.Amount = amount
	}
	if appointment.Type == models.TypeEmergency {
		// Emergency features unlock on payment; scheduled bookings unlock on
		// doctor confirmation instead.
		appointment.Status = models.StatusConfirmed
		appointment.ChatUnlocked = true
		appointment.VideoUnlocked = true
	}
	if err := l.save(ctx, appointment); err != nil {
		return nil, err
	}

	l.sink.Append(ctx, appointment.PatientID, models.NotificationPaymentReceived,
		"Your payment has been received.", appointmentData(appointment))
	return appointment, nil
}

// ToggleChat flips the doctor-controlled chat flag. A write to the value the
// flag already holds is a no-op and emits nothing.
func (l *Lifecycle) ToggleChat(ctx context.Context, appointmentID, doctorUserID string, enabled bool) (*models.Appointment, error) {
	appointment, err := l.load(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Doctor.UserID != doctorUserID {
		return nil, ErrForbidden
	}
	if appointment.Status == models.StatusCompleted {
		return nil, ErrInvalidTransition
	}
	if appointment.ChatUnlocked == enabled {
		return appointment, nil
	}

	appointment.ChatUnlocked = enabled
	if err := l.save(ctx, appointment); err != nil {
		return nil, err
	}

	notifType := models.NotificationChatEnabled
	message := "The doctor has enabled chat for your appointment."
	if !enabled {
		notifType = models.NotificationChatDisabled
		message = "The doctor has disabled chat for your appointment."
	}
	l.sink.Append(ctx, appointment.PatientID, notifType, message, appointmentData(appointment))
	return appointment, nil
}

// ToggleVideo flips the doctor-controlled video flag. Enabling without an
// explicit link provisions a meeting, falling back to a deterministic
// placeholder when the provider is unreachable or unconfigured.
func (l *Lifecycle) ToggleVideo(ctx context.Context, appointmentID, doctorUserID string, enabled bool, joinURL string) (*models.Appointment, error) {
	appointment, err := l.load(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Doctor.UserID != doctorUserID {
		return nil, ErrForbidden
	}
	if appointment.Status == models.StatusCompleted {
		return nil, ErrInvalidTransition
	}
	if appointment.VideoUnlocked == enabled {
		return appointment, nil
	}

	now := time.Now()
	appointment.VideoUnlocked = enabled
	appointment.Video.Enabled = enabled
	appointment.Video.Provider = l.meetings.Provider()
	if enabled {
		appointment.Video.EnabledAt = &now
		switch {
		case joinURL != "":
			appointment.Video.JoinURL = joinURL
		case appointment.Video.JoinURL == "":
			details, err := l.meetings.Provision(ctx,
				appointment.Patient.FullName(), appointment.Doctor.User.FullName(),
				appointment.AppointmentDate, appointment.AppointmentTime)
			if err != nil {
				l.log.Warn("meeting provisioning failed, using placeholder link",
					zap.String("appointmentId", appointment.ID), zap.Error(err))
				placeholder := l.meetings.Placeholder(appointment.ID)
				details = &placeholder
			}
			appointment.Video.MeetingID = details.MeetingID
			appointment.Video.JoinURL = details.JoinURL
			appointment.Video.HostURL = details.HostURL
		}
	} else {
		appointment.Video.DisabledAt = &now
	}
	if err := l.save(ctx, appointment); err != nil {
		return nil, err
	}

	notifType := models.NotificationVideoEnabled
	message := "The doctor has enabled video for your appointment."
	if !enabled {
		notifType = models.NotificationVideoDisabled
		message = "The doctor has disabled video for your appointment."
	}
	l.sink.Append(ctx, appointment.PatientID, notifType, message, appointmentData(appointment))
	return appointment, nil
}

func appointmentData(a *models.Appointment) map[string]interface{} {
	return map[string]interface{}{
		"appointmentId": a.ID,
		"doctorId":      a.DoctorID,
		"date":          a.AppointmentDate,
		"time":          a.AppointmentTime,
		"status":        a.Status,
	}
}
