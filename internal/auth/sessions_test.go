package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/config"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/utils"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB, *config.Config) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	cfg := &config.Config{
		JWTSecret:             "test-secret",
		SessionExpirationDays: 30,
	}
	return NewStore(db, cfg), db, cfg
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		Email:     "patient@test.local",
		FirstName: "Pat",
		LastName:  "Doe",
		Role:      models.RolePatient,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func parseClaims(t *testing.T, token string, cfg *config.Config) *utils.Claims {
	t.Helper()
	claims, err := utils.ValidateToken(token, cfg.JWTSecret)
	require.NoError(t, err)
	return claims
}

func TestIssueAndValidate(t *testing.T) {
	store, db, cfg := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, db)

	token, err := store.Issue(ctx, user)
	require.NoError(t, err)

	claims := parseClaims(t, token, cfg)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RolePatient, claims.Role)

	got, err := store.Validate(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
}

func TestSecondLoginSupersedesFirst(t *testing.T) {
	store, db, cfg := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, db)

	firstToken, err := store.Issue(ctx, user)
	require.NoError(t, err)
	secondToken, err := store.Issue(ctx, user)
	require.NoError(t, err)

	// The earlier credential is still a valid signed JWT but its session slot
	// has been replaced.
	_, err = store.Validate(ctx, parseClaims(t, firstToken, cfg))
	assert.ErrorIs(t, err, ErrSessionSuperseded)

	_, err = store.Validate(ctx, parseClaims(t, secondToken, cfg))
	require.NoError(t, err)

	// Exactly one session row per user, ever.
	var count int64
	require.NoError(t, db.Model(&models.Session{}).
		Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestInvalidateRevokesOutstandingCredential(t *testing.T) {
	store, db, cfg := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, db)

	token, err := store.Issue(ctx, user)
	require.NoError(t, err)
	require.NoError(t, store.Invalidate(ctx, user.ID))

	_, err = store.Validate(ctx, parseClaims(t, token, cfg))
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestExpiredSessionRejected(t *testing.T) {
	store, db, cfg := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, db)

	token, err := store.Issue(ctx, user)
	require.NoError(t, err)

	// Age the stored session past its expiry without touching the JWT.
	require.NoError(t, db.Model(&models.Session{}).
		Where("user_id = ?", user.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = store.Validate(ctx, parseClaims(t, token, cfg))
	assert.ErrorIs(t, err, ErrSessionExpired)
}
