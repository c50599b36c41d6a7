package notify

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
)

// Sink receives in-app notifications produced by state transitions.
// Appends are best effort: a failed append is logged and swallowed, it must
// never fail the transition that produced it.
type Sink interface {
	Append(ctx context.Context, userID, notifType, message string, data map[string]interface{})
}

// Mailer dispatches emails, fire-and-forget from the caller's perspective.
type Mailer interface {
	Send(to, subject, text, html string)
}

// DBSink persists notifications to the notifications table.
type DBSink struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewDBSink creates a database-backed notification sink.
func NewDBSink(db *gorm.DB, log *zap.Logger) *DBSink {
	return &DBSink{db: db, log: log}
}

// Append writes one notification row. Failures are logged, never returned.
func (s *DBSink) Append(ctx context.Context, userID, notifType, message string, data map[string]interface{}) {
	var payload string
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			s.log.Warn("failed to encode notification payload",
				zap.String("userId", userID), zap.String("type", notifType), zap.Error(err))
		} else {
			payload = string(raw)
		}
	}

	notification := models.Notification{
		UserID:  userID,
		Type:    notifType,
		Message: message,
		Data:    payload,
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		s.log.Warn("failed to append notification",
			zap.String("userId", userID), zap.String("type", notifType), zap.Error(err))
	}
}

// LogMailer is the default mail transport: it only logs the outgoing mail.
// Real SMTP delivery is configured out of band; the scheduling core never
// depends on delivery succeeding.
type LogMailer struct {
	log  *zap.Logger
	from string
}

// NewLogMailer creates a logging mail dispatcher.
func NewLogMailer(log *zap.Logger, from string) *LogMailer {
	return &LogMailer{log: log, from: from}
}

// Send logs the email instead of delivering it.
func (m *LogMailer) Send(to, subject, text, html string) {
	m.log.Info("email dispatched",
		zap.String("from", m.from),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("textLen", len(text)),
		zap.Int("htmlLen", len(html)))
}
