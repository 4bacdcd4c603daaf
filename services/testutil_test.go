package services

import (
	"context"
	"testing"

	"backend/config"
	"backend/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{
		Email:            email,
		Password:         "x",
		FullName:         "Test User",
		SubscriptionTier: models.TierFree,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return u
}

// stubPlanner returns canned responses and records what it was asked.
type stubPlanner struct {
	plan        *MealPlanResponse
	planSource  PlanSource
	replacement *AIMeal
	replSource  PlanSource

	lastProfile MealPlanProfile
	lastRequest ReplacementRequest
}

func (s *stubPlanner) GenerateMealPlan(ctx context.Context, profile MealPlanProfile) (*MealPlanResponse, PlanSource) {
	s.lastProfile = profile
	if s.plan == nil {
		return fallbackWeeklyPlan(), PlanSourceFallback
	}
	return s.plan, s.planSource
}

func (s *stubPlanner) GenerateReplacementMeal(ctx context.Context, req ReplacementRequest) (*AIMeal, PlanSource) {
	s.lastRequest = req
	if s.replacement == nil {
		return fallbackMealForTiming(req.MealTiming), PlanSourceFallback
	}
	return s.replacement, s.replSource
}

func testMeal(name, timing string, calories float64, ingredients ...models.Ingredient) AIMeal {
	if ingredients == nil {
		ingredients = []models.Ingredient{}
	}
	return AIMeal{
		Name:              name,
		MealTiming:        timing,
		DietaryCategory:   "BALANCED",
		Calories:          calories,
		ProteinG:          25,
		CarbsG:            45,
		FatsG:             14,
		FiberG:            6,
		SugarG:            7,
		SodiumMg:          480,
		PrepTimeMinutes:   20,
		DifficultyLevel:   2,
		Ingredients:       ingredients,
		Instructions:      []string{"Cook it."},
		Allergens:         []string{},
		PortionMultiplier: 1.0,
	}
}

// testWeek builds a 7-day response with the same meals every day.
func testWeek(meals ...AIMeal) *MealPlanResponse {
	out := &MealPlanResponse{WeeklyPlan: make([]DayPlan, 7)}
	for i := 0; i < 7; i++ {
		out.WeeklyPlan[i] = DayPlan{Day: DayNames[i], Meals: meals}
	}
	return out
}
