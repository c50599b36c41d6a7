package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/config"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/models"
	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/utils"
)

// Session validation failures. ErrSessionSuperseded is distinguishable from a
// plain invalid credential so clients can show a "logged in elsewhere" banner.
var (
	ErrSessionSuperseded = errors.New("session invalidated elsewhere")
	ErrSessionRevoked    = errors.New("session has been logged out")
	ErrSessionExpired    = errors.New("session has expired")
)

// Store issues and validates single-active-session credentials. Each user has
// at most one session row; issuing replaces it, which silently logs out every
// other device on its next request.
type Store struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewStore creates a session store.
func NewStore(db *gorm.DB, cfg *config.Config) *Store {
	return &Store{db: db, cfg: cfg}
}

// Issue mints a fresh session for the user and returns the signed credential.
// Any previously issued credential for this user stops validating.
func (s *Store) Issue(ctx context.Context, user *models.User) (string, error) {
	tokenID := uuid.New().String()
	expiresAt := time.Now().Add(time.Duration(s.cfg.SessionExpirationDays) * 24 * time.Hour)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		session := models.Session{
			UserID:    user.ID,
			TokenID:   tokenID,
			ExpiresAt: expiresAt,
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return "", err
	}

	return utils.GenerateSessionToken(user, tokenID, s.cfg)
}

// Validate checks the credential's session id against the user's current
// session slot and returns the user on success.
func (s *Store) Validate(ctx context.Context, claims *utils.Claims) (*models.User, error) {
	var session models.Session
	if err := s.db.WithContext(ctx).Where("user_id = ?", claims.UserID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionRevoked
		}
		return nil, err
	}

	if session.TokenID != claims.SessionID {
		return nil, ErrSessionSuperseded
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", claims.UserID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Invalidate clears the user's session slot so no outstanding credential,
// however unexpired, validates afterwards.
func (s *Store) Invalidate(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error
}
