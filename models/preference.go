package models

import (
	"gorm.io/gorm"
)

// UserMealPreference annotates a template per user (favorite, dislike,
// rating). Feeds future AI prompts. Upserted on the unique triple.
type UserMealPreference struct {
	gorm.Model
	UserID         uint   `gorm:"uniqueIndex:idx_user_template_pref;not null"`
	TemplateID     uint   `gorm:"uniqueIndex:idx_user_template_pref;not null"`
	PreferenceType string `gorm:"uniqueIndex:idx_user_template_pref;size:20"` // "favorite"|"dislike"|"rating"
	Rating         int
	Notes          string `gorm:"type:text"`
}
