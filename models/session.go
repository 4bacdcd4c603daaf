package models

import (
	"time"

	"gorm.io/gorm"
)

// Session backs token validation and revocation. A user may hold several
// live sessions at once (one per signed-in device).
type Session struct {
	gorm.Model
	Token     string    `gorm:"uniqueIndex;size:512;not null"`
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"not null"`
}
