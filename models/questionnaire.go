package models

import (
	"time"

	"gorm.io/gorm"
)

// Questionnaire captures onboarding answers that feed AI prompts.
// The most recent completed row wins; plan generation tolerates none.
type Questionnaire struct {
	gorm.Model
	UserID             uint   `gorm:"index;not null"`
	DietaryPreferences string // comma-separated, e.g. "vegetarian,low_carb"
	Allergies          string // comma-separated, e.g. "peanuts,shellfish"
	CookingSkill       string     `gorm:"size:16"` // "beginner"|"intermediate"|"advanced"
	CompletedAt        *time.Time // nil while in progress
}
