package services

import (
	"context"
	"testing"
	"time"

	"backend/models"
)

func TestMonthSummary(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "cal@example.com")
	if err := db.Create(&models.NutritionGoal{
		UserID: user.ID, Calories: 2000, ProteinG: 150, CarbsG: 250, FatG: 67,
	}).Error; err != nil {
		t.Fatalf("seed goal: %v", err)
	}

	mar5 := time.Date(2026, 3, 5, 8, 0, 0, 0, time.Local)
	for _, m := range []models.Meal{
		{UserID: user.ID, Name: "breakfast", AteAt: mar5, Calories: 500, ProteinG: 30, CarbsG: 60, FatG: 15},
		{UserID: user.ID, Name: "dinner", AteAt: mar5.Add(10 * time.Hour), Calories: 1500, ProteinG: 120, CarbsG: 190, FatG: 52},
		// outside the month, must not leak in
		{UserID: user.ID, Name: "april", AteAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.Local), Calories: 900},
	} {
		meal := m
		if err := db.Create(&meal).Error; err != nil {
			t.Fatalf("seed meal: %v", err)
		}
	}

	svc := NewCalendarService(db)
	view, err := svc.MonthSummary(context.Background(), user.ID, 2026, 3)
	if err != nil {
		t.Fatalf("MonthSummary: %v", err)
	}

	if len(view.Days) != 31 {
		t.Fatalf("days = %d, want 31 for March", len(view.Days))
	}

	day := view.Days[4] // March 5th
	if day.Date != "2026-03-05" {
		t.Fatalf("day 4 = %s, want 2026-03-05", day.Date)
	}
	if day.MealCount != 2 {
		t.Errorf("meal count = %d, want 2", day.MealCount)
	}
	if day.Calories != 2000 {
		t.Errorf("calories = %v, want 2000", day.Calories)
	}
	if day.Percentages["calories"] != 100 {
		t.Errorf("calories pct = %v, want 100", day.Percentages["calories"])
	}
	if day.Percentages["protein"] != 100 {
		t.Errorf("protein pct = %v, want 100", day.Percentages["protein"])
	}
	if day.QualityScore != 100 {
		t.Errorf("quality = %v, want 100", day.QualityScore)
	}

	empty := view.Days[0]
	if empty.MealCount != 0 || empty.Calories != 0 {
		t.Errorf("empty day = %+v, want zeros", empty)
	}
	if empty.GoalCalories != 2000 {
		t.Errorf("empty day goal = %v, want 2000", empty.GoalCalories)
	}
}

func TestMonthSummaryDefaultsWithoutGoal(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "nogoal@example.com")

	svc := NewCalendarService(db)
	view, err := svc.MonthSummary(context.Background(), user.ID, 2026, 2)
	if err != nil {
		t.Fatalf("MonthSummary: %v", err)
	}
	if len(view.Days) != 28 {
		t.Fatalf("days = %d, want 28 for February 2026", len(view.Days))
	}
	if view.Days[0].GoalCalories != 2000 || view.Days[0].GoalProteinG != 150 {
		t.Errorf("default goals = %v/%v, want 2000/150",
			view.Days[0].GoalCalories, view.Days[0].GoalProteinG)
	}
}

func TestMonthSummaryRejectsBadMonth(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCalendarService(db)
	if _, err := svc.MonthSummary(context.Background(), 1, 2026, 13); err == nil {
		t.Error("want error for month 13")
	}
	if _, err := svc.MonthSummary(context.Background(), 1, 2026, 0); err == nil {
		t.Error("want error for month 0")
	}
}

func TestMonthSummaryCapsPercentages(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "overshoot@example.com")
	if err := db.Create(&models.NutritionGoal{
		UserID: user.ID, Calories: 2000, ProteinG: 150, CarbsG: 250, FatG: 67,
	}).Error; err != nil {
		t.Fatalf("seed goal: %v", err)
	}
	if err := db.Create(&models.Meal{
		UserID: user.ID, Name: "feast", AteAt: time.Date(2026, 3, 12, 13, 0, 0, 0, time.Local),
		Calories: 4000, ProteinG: 300, CarbsG: 125, FatG: 67,
	}).Error; err != nil {
		t.Fatalf("seed meal: %v", err)
	}

	svc := NewCalendarService(db)
	view, err := svc.MonthSummary(context.Background(), user.ID, 2026, 3)
	if err != nil {
		t.Fatalf("MonthSummary: %v", err)
	}

	day := view.Days[11] // 2026-03-12
	if day.Percentages["calories"] != 100 {
		t.Errorf("calories pct = %v, want capped at 100", day.Percentages["calories"])
	}
	if day.Percentages["protein"] != 100 {
		t.Errorf("protein pct = %v, want capped at 100", day.Percentages["protein"])
	}
	// under-goal macros stay exact
	if day.Percentages["carbs"] != 50 {
		t.Errorf("carbs pct = %v, want 50", day.Percentages["carbs"])
	}
	if day.Percentages["fat"] != 100 {
		t.Errorf("fat pct = %v, want 100", day.Percentages["fat"])
	}
}
