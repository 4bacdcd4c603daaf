package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backend/models"
)

func TestQualityScore(t *testing.T) {
	goal := &models.NutritionGoal{Calories: 2000, ProteinG: 150, CarbsG: 250, FatG: 67}

	tests := []struct {
		name                string
		cal, prot, carb, ft float64
		want                float64
	}{
		{"exactly on goal", 2000, 150, 250, 67, 100},
		{"nothing eaten", 0, 0, 0, 0, 0},
		{"double everything", 4000, 300, 500, 134, 0},
		{"half calories only", 1000, 150, 250, 67, 87.5},
		{"far overshoot caps at full penalty", 10000, 150, 250, 67, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QualityScore(tt.cal, tt.prot, tt.carb, tt.ft, goal)
			if got != tt.want {
				t.Errorf("QualityScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQualityScoreIgnoresUnsetGoals(t *testing.T) {
	goal := &models.NutritionGoal{Calories: 2000} // macro goals unset
	if got := QualityScore(2000, 999, 999, 999, goal); got != 100 {
		t.Errorf("QualityScore = %v, want 100 when only calories has a goal", got)
	}
}

func TestCalorieStreak(t *testing.T) {
	anchor := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	day := func(offset int) string {
		return anchor.AddDate(0, 0, offset).Format("2006-01-02")
	}

	tests := []struct {
		name string
		cals map[string]float64
		want int
	}{
		{"no data", map[string]float64{}, 0},
		{"anchor misses", map[string]float64{day(0): 1999}, 0},
		{"three day run", map[string]float64{day(0): 2000, day(-1): 2100, day(-2): 2500}, 3},
		{"gap breaks the run", map[string]float64{day(0): 2000, day(-1): 1000, day(-2): 2500}, 1},
		{"meeting the goal exactly counts", map[string]float64{day(0): 2000}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalorieStreak(tt.cals, 2000, anchor); got != tt.want {
				t.Errorf("CalorieStreak = %d, want %d", got, tt.want)
			}
		})
	}

	if got := CalorieStreak(map[string]float64{day(0): 5000}, 0, anchor); got != 0 {
		t.Errorf("CalorieStreak with zero goal = %d, want 0", got)
	}
}

func TestBestWorstWindows(t *testing.T) {
	mkDays := func(pcts ...float64) []DayStat {
		days := make([]DayStat, len(pcts))
		for i, p := range pcts {
			days[i] = DayStat{Date: fmt.Sprintf("2026-03-%02d", i+1), PercentOfGoal: p}
		}
		return days
	}

	t.Run("fewer days than window", func(t *testing.T) {
		best, worst := BestWorstWindows(mkDays(100, 90, 80), 7)
		if best != nil || worst != nil {
			t.Errorf("got %v/%v, want nil/nil", best, worst)
		}
	})

	t.Run("single window", func(t *testing.T) {
		best, worst := BestWorstWindows(mkDays(100, 100, 100), 3)
		if best == nil || worst == nil {
			t.Fatal("want both windows")
		}
		if best.AvgPercentOfGoal != 100 || worst.AvgPercentOfGoal != 100 {
			t.Errorf("avg = %v/%v, want 100/100", best.AvgPercentOfGoal, worst.AvgPercentOfGoal)
		}
		if best.Start != "2026-03-01" || best.End != "2026-03-03" {
			t.Errorf("window = %s..%s", best.Start, best.End)
		}
	})

	t.Run("sliding picks extremes", func(t *testing.T) {
		// windows of 2: [50,60]=55 [60,100]=80 [100,120]=110 [120,40]=80
		best, worst := BestWorstWindows(mkDays(50, 60, 100, 120, 40), 2)
		if best.Start != "2026-03-03" || best.AvgPercentOfGoal != 110 {
			t.Errorf("best = %s avg %v, want 2026-03-03 avg 110", best.Start, best.AvgPercentOfGoal)
		}
		if worst.Start != "2026-03-01" || worst.AvgPercentOfGoal != 55 {
			t.Errorf("worst = %s avg %v, want 2026-03-01 avg 55", worst.Start, worst.AvgPercentOfGoal)
		}
	})
}

func TestStatisticsSummary(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "stats@example.com")
	if err := db.Create(&models.NutritionGoal{
		UserID: user.ID, Calories: 2000, ProteinG: 150, CarbsG: 250, FatG: 67,
	}).Error; err != nil {
		t.Fatalf("seed goal: %v", err)
	}

	to := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	from := to.AddDate(0, 0, -2)
	seed := func(offset int, cal float64) {
		if err := db.Create(&models.Meal{
			UserID: user.ID, Name: "m", AteAt: to.AddDate(0, 0, offset).Add(12 * time.Hour),
			Calories: cal, ProteinG: 150, CarbsG: 250, FatG: 67,
		}).Error; err != nil {
			t.Fatalf("seed meal: %v", err)
		}
	}
	seed(-2, 1000)
	seed(-1, 2000)
	seed(0, 2000)

	svc := NewStatisticsService(db)
	sum, err := svc.Summary(context.Background(), user.ID, from, to)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if len(sum.Days) != 3 {
		t.Fatalf("days = %d, want 3", len(sum.Days))
	}
	if sum.Days[0].Calories != 1000 || sum.Days[0].PercentOfGoal != 50 {
		t.Errorf("day 0 = %v cal %v%%, want 1000/50", sum.Days[0].Calories, sum.Days[0].PercentOfGoal)
	}
	if sum.AvgCalories != 1666.67 {
		t.Errorf("avg calories = %v, want 1666.67", sum.AvgCalories)
	}
	// last two days met the goal, the first did not
	if sum.CurrentStreakDays != 2 {
		t.Errorf("streak = %d, want 2", sum.CurrentStreakDays)
	}
	// 3 days < 7-day window
	if sum.BestWindow != nil || sum.WorstWindow != nil {
		t.Error("windows must be nil for short ranges")
	}
}
