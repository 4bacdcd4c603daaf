package services

import (
	"context"
	"math"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

type StatisticsService struct{ db *gorm.DB }

func NewStatisticsService(db *gorm.DB) *StatisticsService { return &StatisticsService{db: db} }

type DayStat struct {
	Date          string  `json:"date"`
	Calories      float64 `json:"calories"`
	ProteinG      float64 `json:"protein_g"`
	CarbsG        float64 `json:"carbs_g"`
	FatG          float64 `json:"fat_g"`
	PercentOfGoal float64 `json:"percent_of_goal"` // calories vs goal
	QualityScore  float64 `json:"quality_score"`
}

type WindowStat struct {
	Start            string  `json:"start"`
	End              string  `json:"end"`
	AvgPercentOfGoal float64 `json:"avg_percent_of_goal"`
}

type StatisticsSummary struct {
	From string `json:"from"`
	To   string `json:"to"`

	AvgCalories      float64 `json:"avg_calories"`
	AvgPercentOfGoal float64 `json:"avg_percent_of_goal"`
	AvgQualityScore  float64 `json:"avg_quality_score"`

	CurrentStreakDays int         `json:"current_streak_days"`
	BestWindow        *WindowStat `json:"best_window,omitempty"`
	WorstWindow       *WindowStat `json:"worst_window,omitempty"`

	Days []DayStat `json:"days"`
}

// Summary aggregates stored meals over [from, to] into per-day stats,
// streaks and best/worst 7-day windows. All computation is over
// already-fetched rows.
func (s *StatisticsService) Summary(ctx context.Context, userID uint, from, to time.Time) (*StatisticsSummary, error) {
	var meals []models.Meal
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND ate_at >= ? AND ate_at < ?", userID, dayStart(from), dayStart(to).AddDate(0, 0, 1)).
		Order("ate_at ASC").
		Find(&meals).Error; err != nil {
		return nil, err
	}

	goal := goalSnapshot(ctx, s.db, userID)

	type acc struct{ cal, prot, carb, fat float64 }
	byDate := make(map[string]*acc)
	for _, m := range meals {
		key := m.AteAt.Format("2006-01-02")
		a := byDate[key]
		if a == nil {
			a = &acc{}
			byDate[key] = a
		}
		a.cal += m.Calories
		a.prot += m.ProteinG
		a.carb += m.CarbsG
		a.fat += m.FatG
	}

	out := &StatisticsSummary{
		From: from.Format("2006-01-02"),
		To:   to.Format("2006-01-02"),
	}

	var calSum, pctSum, qualSum float64
	caloriesByDate := make(map[string]float64)
	for d := dayStart(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		a := byDate[key]
		if a == nil {
			a = &acc{}
		}
		caloriesByDate[key] = a.cal
		ds := DayStat{
			Date:          key,
			Calories:      round2(a.cal),
			ProteinG:      round2(a.prot),
			CarbsG:        round2(a.carb),
			FatG:          round2(a.fat),
			PercentOfGoal: pct(a.cal, goal.Calories),
			QualityScore:  QualityScore(a.cal, a.prot, a.carb, a.fat, goal),
		}
		out.Days = append(out.Days, ds)
		calSum += a.cal
		pctSum += ds.PercentOfGoal
		qualSum += ds.QualityScore
	}

	n := len(out.Days)
	if n > 0 {
		out.AvgCalories = round2(calSum / float64(n))
		out.AvgPercentOfGoal = round2(pctSum / float64(n))
		out.AvgQualityScore = round2(qualSum / float64(n))
	}

	out.CurrentStreakDays = CalorieStreak(caloriesByDate, goal.Calories, dayStart(to))
	out.BestWindow, out.WorstWindow = BestWorstWindows(out.Days, 7)
	return out, nil
}

// QualityScore is a capped ratio-based penalty formula: 100 minus up to 25
// points per macro, where a macro loses points proportionally to how far
// consumption sits from its goal (distance capped at 100%).
func QualityScore(calories, protein, carbs, fat float64, goal *models.NutritionGoal) float64 {
	penalty := macroPenalty(calories, goal.Calories) +
		macroPenalty(protein, goal.ProteinG) +
		macroPenalty(carbs, goal.CarbsG) +
		macroPenalty(fat, goal.FatG)
	return round2(100 - penalty)
}

func macroPenalty(consumed, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	dist := math.Abs(consumed/goal - 1)
	if dist > 1 {
		dist = 1
	}
	return dist * 25
}

// CalorieStreak counts consecutive days ending at anchor that met 100% of
// the calorie goal, scanning most-recent-first and stopping at the first
// miss.
func CalorieStreak(caloriesByDate map[string]float64, goalCalories float64, anchor time.Time) int {
	if goalCalories <= 0 {
		return 0
	}
	streak := 0
	for d := dayStart(anchor); ; d = d.AddDate(0, 0, -1) {
		if caloriesByDate[d.Format("2006-01-02")] < goalCalories {
			break
		}
		streak++
	}
	return streak
}

// BestWorstWindows finds the sliding windows of the given size with the
// highest and lowest average percent-of-goal. Returns nils when fewer days
// than the window size are available.
func BestWorstWindows(days []DayStat, window int) (best, worst *WindowStat) {
	if window <= 0 || len(days) < window {
		return nil, nil
	}

	var sum float64
	for i := 0; i < window; i++ {
		sum += days[i].PercentOfGoal
	}
	bestSum, worstSum := sum, sum
	bestIdx, worstIdx := 0, 0

	for i := window; i < len(days); i++ {
		sum += days[i].PercentOfGoal - days[i-window].PercentOfGoal
		if sum > bestSum {
			bestSum, bestIdx = sum, i-window+1
		}
		if sum < worstSum {
			worstSum, worstIdx = sum, i-window+1
		}
	}

	mk := func(idx int, total float64) *WindowStat {
		return &WindowStat{
			Start:            days[idx].Date,
			End:              days[idx+window-1].Date,
			AvgPercentOfGoal: round2(total / float64(window)),
		}
	}
	return mk(bestIdx, bestSum), mk(worstIdx, worstSum)
}

// ---------- shared helpers ----------

func pct(actual, goal float64) float64 {
	if goal <= 0 {
		if actual <= 0 {
			return 0
		}
		return 100
	}
	return round2((actual / goal) * 100.0)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
