package models

import (
	"time"

	"gorm.io/gorm"
)

// One logged Meal with its nutrition snapshot. Rows come from the
// photo-analysis flow or from manual edits; values are denormalized so
// history survives template/catalog changes.
type Meal struct {
	gorm.Model
	UserID   uint   `gorm:"index;not null"`
	Name     string `gorm:"not null"`
	Type     string `gorm:"size:20"` // "BREAKFAST"|"LUNCH"|"DINNER"|"SNACK"
	AteAt    time.Time
	ImageURL string

	Calories float64
	ProteinG float64
	CarbsG   float64
	FatG     float64
	FiberG   float64
	SugarG   float64
	SodiumMg float64

	AnalysisSource string `gorm:"size:16"` // "model" | "fallback" | "manual"
}
