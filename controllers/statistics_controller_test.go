// controllers/statistics_controller_test.go
package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"backend/config"
	"backend/models"
	"backend/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStatsRouter(t *testing.T) (*gin.Engine, *gorm.DB, uint) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// in-memory sqlite is per connection
	sqlDB.SetMaxOpenConns(1)
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	user := models.User{Email: "stats-api@example.com", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	sc := NewStatisticsController(services.NewStatisticsService(db))
	r := gin.New()
	r.GET("/statistics", func(c *gin.Context) { c.Set("userID", user.ID) }, sc.Summary)
	return r, db, user.ID
}

func getSummary(t *testing.T, r *gin.Engine, query string) *services.StatisticsSummary {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/statistics"+query, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var sum services.StatisticsSummary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	return &sum
}

func TestStatisticsEndpointStreakEndsToday(t *testing.T) {
	r, db, userID := setupStatsRouter(t)
	if err := db.Create(&models.NutritionGoal{UserID: userID, Calories: 2000}).Error; err != nil {
		t.Fatalf("seed goal: %v", err)
	}
	now := time.Now()
	for offset := 0; offset >= -2; offset-- {
		meal := models.Meal{UserID: userID, Name: "m", AteAt: now.AddDate(0, 0, offset), Calories: 2000}
		if err := db.Create(&meal).Error; err != nil {
			t.Fatalf("seed meal: %v", err)
		}
	}

	sum := getSummary(t, r, "")
	if len(sum.Days) != 30 {
		t.Fatalf("days = %d, want 30", len(sum.Days))
	}
	today := now.Format("2006-01-02")
	if last := sum.Days[len(sum.Days)-1].Date; last != today {
		t.Errorf("last day = %s, want %s", last, today)
	}
	// goal met today and the two days before
	if sum.CurrentStreakDays != 3 {
		t.Errorf("streak = %d, want 3", sum.CurrentStreakDays)
	}
}

func TestStatisticsEndpointExplicitRangeIsInclusive(t *testing.T) {
	r, db, userID := setupStatsRouter(t)
	if err := db.Create(&models.NutritionGoal{UserID: userID, Calories: 2000}).Error; err != nil {
		t.Fatalf("seed goal: %v", err)
	}
	seed := func(day int, cal float64) {
		meal := models.Meal{
			UserID: userID, Name: "m",
			AteAt:    time.Date(2026, 3, day, 12, 0, 0, 0, time.Local),
			Calories: cal,
		}
		if err := db.Create(&meal).Error; err != nil {
			t.Fatalf("seed meal: %v", err)
		}
	}
	seed(5, 1000)
	seed(6, 1500)
	seed(7, 2000)
	seed(8, 999) // past the requested range

	sum := getSummary(t, r, "?from=2026-03-05&to=2026-03-07")
	if len(sum.Days) != 3 {
		t.Fatalf("days = %d, want 3", len(sum.Days))
	}
	if sum.Days[0].Date != "2026-03-05" || sum.Days[2].Date != "2026-03-07" {
		t.Errorf("range = %s..%s, want 2026-03-05..2026-03-07", sum.Days[0].Date, sum.Days[2].Date)
	}
	if sum.Days[2].Calories != 2000 {
		t.Errorf("last day calories = %v, want 2000 without the 03-08 meal", sum.Days[2].Calories)
	}
	if sum.AvgCalories != 1500 {
		t.Errorf("avg calories = %v, want 1500", sum.AvgCalories)
	}
}

func TestStatisticsEndpointDaysWindowSize(t *testing.T) {
	r, _, _ := setupStatsRouter(t)

	for _, days := range []int{1, 7} {
		sum := getSummary(t, r, "?days="+strconv.Itoa(days))
		if len(sum.Days) != days {
			t.Errorf("days=%d returned %d rows", days, len(sum.Days))
		}
		today := time.Now().Format("2006-01-02")
		if last := sum.Days[len(sum.Days)-1].Date; last != today {
			t.Errorf("days=%d last day = %s, want %s", days, last, today)
		}
	}
}
