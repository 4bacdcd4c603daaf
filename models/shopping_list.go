package models

import (
	"time"

	"gorm.io/gorm"
)

// ShoppingList is a generated snapshot of aggregated ingredient quantities
// for a plan, with per-item estimated costs. Regenerating creates a new row.
type ShoppingList struct {
	gorm.Model
	Reference          string `gorm:"uniqueIndex;size:36"` // uuid handed to clients
	UserID             uint   `gorm:"index;not null"`
	PlanID             uint   `gorm:"index;not null"`
	WeekStartDate      time.Time
	ItemsJSON          string  `gorm:"type:text"` // map[category][]ShoppingItem
	TotalEstimatedCost float64 // sum of per-item rounded costs
}

// ShoppingItem is the unit stored inside ShoppingList.ItemsJSON.
type ShoppingItem struct {
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	Category      string  `json:"category"`
	EstimatedCost float64 `json:"estimated_cost"` // rounded to cents
}
