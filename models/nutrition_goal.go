package models

import (
	"gorm.io/gorm"
)

// NutritionGoal holds a user's daily macro targets. The most recently
// updated row is the active goal.
type NutritionGoal struct {
	gorm.Model
	UserID   uint    `gorm:"index;not null"`
	Calories float64 // e.g. 2000 kcal
	ProteinG float64 // e.g. 150 g
	CarbsG   float64 // e.g. 250 g
	FatG     float64 // e.g. 67 g
	FiberG   float64
	SodiumMg float64
}
