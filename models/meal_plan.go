package models

import (
	"time"

	"gorm.io/gorm"
)

// UserMealPlan is a named weekly plan. At most one plan is active per user;
// creating a new plan deactivates the previous one in the same transaction.
type UserMealPlan struct {
	gorm.Model
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"not null"`
	IsActive  bool   `gorm:"index"`
	StartDate time.Time

	MealsPerDay           int // 2–6
	SnacksPerDay          int // 0–3
	RotationFrequencyDays int // 1–14
	IncludeLeftovers      bool
	FixedMealTimes        bool

	TargetCalories float64
	TargetProteinG float64
	TargetCarbsG   float64
	TargetFatG     float64

	DietaryPreferences  string // comma-separated
	ExcludedIngredients string // comma-separated

	Schedules []MealPlanSchedule `gorm:"foreignKey:PlanID"`
}

// MealTemplate is a reusable meal definition. Templates are shared across
// plans and immutable after creation; replacements create new rows instead
// of mutating or deleting old ones.
type MealTemplate struct {
	gorm.Model
	Name            string `gorm:"index;not null"`
	MealTiming      string `gorm:"size:20;index"` // "BREAKFAST"|"LUNCH"|"DINNER"|"SNACK"
	DietaryCategory string `gorm:"size:32"`

	Calories float64
	ProteinG float64
	CarbsG   float64
	FatsG    float64
	FiberG   float64
	SugarG   float64
	SodiumMg float64

	PrepTimeMinutes int
	DifficultyLevel int

	IngredientsJSON  string `gorm:"type:text"` // []Ingredient
	InstructionsJSON string `gorm:"type:text"` // []string
	AllergensJSON    string `gorm:"type:text"` // []string
	ImageURL         string
}

// MealPlanSchedule pins a template at a (day, timing, order) slot.
// At most one template per coordinate within a plan.
type MealPlanSchedule struct {
	gorm.Model
	PlanID     uint `gorm:"uniqueIndex:idx_plan_slot;not null"`
	TemplateID uint `gorm:"index;not null"`
	DayOfWeek  int  `gorm:"uniqueIndex:idx_plan_slot"` // 0=Sunday … 6=Saturday
	MealTiming string `gorm:"uniqueIndex:idx_plan_slot;size:20"`
	MealOrder  int    `gorm:"uniqueIndex:idx_plan_slot"`

	PortionMultiplier float64 `gorm:"default:1"`
	IsOptional        bool

	Template MealTemplate `gorm:"foreignKey:TemplateID"`
}

// Ingredient is the unit stored inside MealTemplate.IngredientsJSON.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Category string  `json:"category,omitempty"`
}
