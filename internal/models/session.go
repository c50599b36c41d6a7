package models

import (
	"time"
)

// Session is the single active session slot for a user. The uniqueIndex on
// UserID enforces at most one row per user; issuing a new session replaces
// the row and thereby invalidates every credential minted for the old one.
type Session struct {
	BaseModel
	UserID    string    `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	TokenID   string    `gorm:"size:36;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`

	// Define the relationship to User
	User User `gorm:"foreignKey:UserID" json:"-"`
}
