package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription tiers gate how many AI-backed requests a user may issue
// per rolling 24h window.
const (
	TierFree    = "FREE"
	TierBasic   = "BASIC"
	TierPremium = "PREMIUM"
)

type User struct {
	gorm.Model
	Email            string `gorm:"uniqueIndex;not null"`
	Password         string `gorm:"not null"`
	FullName         string
	Birthday         time.Time
	Sex              string
	HeightCm         float64
	WeightKg         float64
	SubscriptionTier string `gorm:"size:16;default:FREE"`

	ResetToken    string
	ResetTokenExp time.Time
}
