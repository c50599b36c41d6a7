package scheduling

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/notify"
)

// Sweeper periodically cancels stale pending, unpaid appointments.
type Sweeper struct {
	db       *gorm.DB
	sink     notify.Sink
	log      *zap.Logger
	interval time.Duration
	maxAge   time.Duration
}

// NewSweeper creates a Sweeper with the given poll interval and the age after
// which a pending unpaid appointment is considered stale.
func NewSweeper(db *gorm.DB, sink notify.Sink, log *zap.Logger, interval, maxAge time.Duration) *Sweeper {
	return &Sweeper{db: db, sink: sink, log: log, interval: interval, maxAge: maxAge}
}

// Run polls until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := s.SweepOnce(ctx)
			if err != nil {
				s.log.Error("auto-cancellation sweep failed", zap.Error(err))
			} else if swept > 0 {
				s.log.Info("auto-cancelled stale appointments", zap.Int("count", swept))
			}
		}
	}
}

// SweepOnce cancels every pending, unpaid appointment older than maxAge and
// returns how many were cancelled.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.maxAge)

	var stale []models.Appointment
	err := s.db.WithContext(ctx).
		Where("status = ? AND payment_status = ? AND created_at < ?",
			models.StatusPending, models.PaymentPending, cutoff).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}

	for i := range stale {
		stale[i].Status = models.StatusCancelled
		stale[i].Release()
		if stale[i].Notes != "" {
			stale[i].Notes += "\n"
		}
		stale[i].Notes += "Cancelled: payment was not completed in time."
		if err := s.db.WithContext(ctx).Save(&stale[i]).Error; err != nil {
			return i, err
		}
		s.sink.Append(ctx, stale[i].PatientID, models.NotificationExpired,
			"Your appointment was cancelled because payment was not completed in time.",
			map[string]interface{}{
				"appointmentId": stale[i].ID,
				"doctorId":      stale[i].DoctorID,
				"date":          stale[i].AppointmentDate,
				"time":          stale[i].AppointmentTime,
			})
	}
	return len(stale), nil
}
