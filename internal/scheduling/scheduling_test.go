package scheduling

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/config"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/meetings"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/notify"
)

// monday is a fixed Monday used across booking tests.
const monday = "2025-01-06"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

type testEnv struct {
	db        *gorm.DB
	index     *AvailabilityIndex
	admission *AdmissionController
	lifecycle *Lifecycle
	sink      notify.Sink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()
	sink := notify.NewDBSink(db, log)
	mailer := notify.NewLogMailer(log, "test@telehealth.local")
	meet := meetings.New(config.MeetingConfig{
		Provider: "zoom",
		BaseURL:  "https://meet.test",
	}, log)
	index := NewAvailabilityIndex(db)
	return &testEnv{
		db:        db,
		index:     index,
		admission: NewAdmissionController(db, index, meet, sink, log),
		lifecycle: NewLifecycle(db, meet, sink, mailer, log),
		sink:      sink,
	}
}

func (e *testEnv) createUser(t *testing.T, role models.Role) *models.User {
	t.Helper()
	user := models.User{
		Email:     uuid.New().String() + "@test.local",
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, e.db.Create(&user).Error)
	return &user
}

func (e *testEnv) createDoctor(t *testing.T) (*models.Doctor, *models.User) {
	t.Helper()
	user := e.createUser(t, models.RoleDoctor)
	doctor := models.Doctor{
		UserID:          user.ID,
		Specialization:  "Cardiology",
		ConsultationFee: 50,
		EmergencyFee:    120,
		IsVerified:      true,
		Status:          models.VerificationVerified,
	}
	require.NoError(t, e.db.Create(&doctor).Error)
	return &doctor, user
}

func (e *testEnv) setWindow(t *testing.T, doctor *models.Doctor, ownerUserID string, day int, start, end string) {
	t.Helper()
	_, err := e.index.Upsert(context.Background(), ownerUserID, UpsertRequest{
		DoctorID:    doctor.ID,
		DayOfWeek:   day,
		StartTime:   start,
		EndTime:     end,
		IsAvailable: true,
	})
	require.NoError(t, err)
}

func (e *testEnv) notificationCount(t *testing.T, userID, notifType string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, notifType).
		Count(&count).Error)
	return count
}
