package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"backend/models"
	"backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type shoppingAccumulator struct {
	name     string // display casing of first occurrence
	unit     string
	category string
	quantity float64
}

// GenerateShoppingList aggregates ingredients across every scheduled meal
// of the plan (a plan spans one rotation week), summing
// quantity x portion_multiplier per (name, unit) pair. Same name with a
// different unit stays a separate line item; no cross-unit conversion.
// Costs are rounded to cents per item, the total is the sum of the rounded
// items, and the result is persisted as a snapshot.
func (s *MealPlanService) GenerateShoppingList(ctx context.Context, userID, planID uint, weekStart time.Time) (*models.ShoppingList, map[string][]models.ShoppingItem, error) {
	var plan models.UserMealPlan
	if err := s.db.WithContext(ctx).
		Preload("Schedules", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week ASC, meal_timing ASC, meal_order ASC")
		}).
		Preload("Schedules.Template").
		Where("id = ? AND user_id = ?", planID, userID).
		First(&plan).Error; err != nil {
		return nil, nil, errors.New("meal plan not found")
	}

	// insertion-ordered aggregation keyed by lowercased (name, unit)
	var order []string
	agg := make(map[string]*shoppingAccumulator)

	for _, sched := range plan.Schedules {
		mult := sched.PortionMultiplier
		if mult <= 0 {
			mult = 1
		}
		for _, ing := range decodeIngredients(sched.Template.IngredientsJSON) {
			name := strings.TrimSpace(ing.Name)
			if name == "" || ing.Quantity <= 0 {
				continue
			}
			unit := strings.ToLower(strings.TrimSpace(ing.Unit))
			key := strings.ToLower(name) + "|" + unit
			acc, ok := agg[key]
			if !ok {
				acc = &shoppingAccumulator{name: name, unit: unit, category: ing.Category}
				agg[key] = acc
				order = append(order, key)
			}
			acc.quantity += ing.Quantity * mult
			if acc.category == "" {
				acc.category = ing.Category
			}
		}
	}

	grouped := make(map[string][]models.ShoppingItem)
	var total float64
	for _, key := range order {
		acc := agg[key]
		category := acc.category
		if category == "" {
			category = "other"
		}
		cost := utils.RoundCents(utils.EstimateIngredientCost(acc.name, acc.unit, acc.quantity))
		total += cost
		grouped[category] = append(grouped[category], models.ShoppingItem{
			Name:          acc.name,
			Quantity:      math.Round(acc.quantity*100) / 100,
			Unit:          acc.unit,
			Category:      category,
			EstimatedCost: cost,
		})
	}
	total = utils.RoundCents(total)

	itemsJSON, err := json.Marshal(grouped)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode shopping list: %w", err)
	}

	list := &models.ShoppingList{
		Reference:          uuid.NewString(),
		UserID:             userID,
		PlanID:             planID,
		WeekStartDate:      weekStart,
		ItemsJSON:          string(itemsJSON),
		TotalEstimatedCost: total,
	}
	if err := s.db.WithContext(ctx).Create(list).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to save shopping list: %w", err)
	}
	return list, grouped, nil
}
