package services

import (
	"context"
	"errors"
	"time"

	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

type CalendarService struct{ db *gorm.DB }

func NewCalendarService(db *gorm.DB) *CalendarService { return &CalendarService{db: db} }

type CalendarDay struct {
	Date      string `json:"date"`
	MealCount int    `json:"meal_count"`

	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`

	GoalCalories float64 `json:"goal_calories"`
	GoalProteinG float64 `json:"goal_protein_g"`
	GoalCarbsG   float64 `json:"goal_carbs_g"`
	GoalFatG     float64 `json:"goal_fat_g"`

	// percent-of-goal per macro, capped at 100
	Percentages  map[string]float64 `json:"percentages"`
	QualityScore float64            `json:"quality_score"`
}

type MonthView struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"` // one entry per day of the month
}

// MonthSummary aggregates stored meals into per-day goal-vs-actual
// nutrition for a calendar month. Pure reshape over fetched rows.
func (s *CalendarService) MonthSummary(ctx context.Context, userID uint, year, month int) (*MonthView, error) {
	if month < 1 || month > 12 {
		return nil, errors.New("month must be 1-12")
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	next := first.AddDate(0, 1, 0)

	var meals []models.Meal
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND ate_at >= ? AND ate_at < ?", userID, first, next).
		Order("ate_at ASC").
		Find(&meals).Error; err != nil {
		return nil, err
	}

	goal := goalSnapshot(ctx, s.db, userID)

	type acc struct {
		count                            int
		calories, protein, carbs, fatSum float64
	}
	byDate := make(map[string]*acc)
	for _, m := range meals {
		key := m.AteAt.Format("2006-01-02")
		a := byDate[key]
		if a == nil {
			a = &acc{}
			byDate[key] = a
		}
		a.count++
		a.calories += m.Calories
		a.protein += m.ProteinG
		a.carbs += m.CarbsG
		a.fatSum += m.FatG
	}

	out := &MonthView{Year: year, Month: month}
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		a := byDate[key]
		if a == nil {
			a = &acc{}
		}
		day := CalendarDay{
			Date:         key,
			MealCount:    a.count,
			Calories:     round2(a.calories),
			ProteinG:     round2(a.protein),
			CarbsG:       round2(a.carbs),
			FatG:         round2(a.fatSum),
			GoalCalories: goal.Calories,
			GoalProteinG: goal.ProteinG,
			GoalCarbsG:   goal.CarbsG,
			GoalFatG:     goal.FatG,
			Percentages: map[string]float64{
				"calories": progressPct(a.calories, goal.Calories),
				"protein":  progressPct(a.protein, goal.ProteinG),
				"carbs":    progressPct(a.carbs, goal.CarbsG),
				"fat":      progressPct(a.fatSum, goal.FatG),
			},
		}
		day.QualityScore = QualityScore(a.calories, a.protein, a.carbs, a.fatSum, goal)
		out.Days = append(out.Days, day)
	}
	return out, nil
}

// progressPct is percent-of-goal clamped to 100 for progress display.
func progressPct(consumed, goal float64) float64 {
	p := pct(consumed, goal)
	if p > 100 {
		return 100
	}
	return p
}

// goalSnapshot returns the latest stored goal, or the documented defaults
// when the user has never set one.
func goalSnapshot(ctx context.Context, db *gorm.DB, userID uint) *models.NutritionGoal {
	var g models.NutritionGoal
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&g).Error
	if err != nil || g.Calories <= 0 {
		return &models.NutritionGoal{
			UserID:   userID,
			Calories: utils.DefaultCalories,
			ProteinG: utils.DefaultProteinG,
			CarbsG:   utils.DefaultCarbsG,
			FatG:     utils.DefaultFatG,
		}
	}
	return &g
}
