package services

import (
	"context"
	"testing"
	"time"
)

func TestMealCRUD(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "meals@example.com")
	svc := NewNutritionService(db, nil, nil)
	ctx := context.Background()

	meal, err := svc.AddMeal(ctx, user.ID, MealInput{
		Name: "Omelette", Type: "breakfast", Calories: 320, ProteinG: 22, FatG: 24,
	})
	if err != nil {
		t.Fatalf("AddMeal: %v", err)
	}
	if meal.AnalysisSource != "manual" {
		t.Errorf("source = %q, want manual", meal.AnalysisSource)
	}
	if meal.AteAt.IsZero() {
		t.Error("AteAt must default to now")
	}

	got, err := svc.GetMeal(ctx, user.ID, meal.ID)
	if err != nil {
		t.Fatalf("GetMeal: %v", err)
	}
	if got.Name != "Omelette" {
		t.Errorf("name = %q, want Omelette", got.Name)
	}

	updated, err := svc.UpdateMeal(ctx, user.ID, meal.ID, MealInput{
		Name: "Cheese Omelette", Calories: 400,
	})
	if err != nil {
		t.Fatalf("UpdateMeal: %v", err)
	}
	if updated.Name != "Cheese Omelette" || updated.Calories != 400 {
		t.Errorf("updated = %q/%v, want Cheese Omelette/400", updated.Name, updated.Calories)
	}

	if err := svc.DeleteMeal(ctx, user.ID, meal.ID); err != nil {
		t.Fatalf("DeleteMeal: %v", err)
	}
	if _, err := svc.GetMeal(ctx, user.ID, meal.ID); err == nil {
		t.Error("deleted meal still readable")
	}
	if err := svc.DeleteMeal(ctx, user.ID, meal.ID); err == nil || err.Error() != "meal not found" {
		t.Errorf("second delete err = %v, want meal not found", err)
	}
}

func TestMealsScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice-meals@example.com")
	bob := createTestUser(t, db, "bob-meals@example.com")
	svc := NewNutritionService(db, nil, nil)
	ctx := context.Background()

	meal, err := svc.AddMeal(ctx, alice.ID, MealInput{Name: "Secret Snack"})
	if err != nil {
		t.Fatalf("AddMeal: %v", err)
	}

	if _, err := svc.GetMeal(ctx, bob.ID, meal.ID); err == nil {
		t.Error("other user's meal readable")
	}
	if err := svc.DeleteMeal(ctx, bob.ID, meal.ID); err == nil {
		t.Error("other user's meal deletable")
	}
	meals, err := svc.ListMeals(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListMeals: %v", err)
	}
	if len(meals) != 0 {
		t.Errorf("bob sees %d meals, want 0", len(meals))
	}
}

func TestListMealsByDateRange(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "range@example.com")
	svc := NewNutritionService(db, nil, nil)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	for _, offset := range []int{-2, -1, 0, 1} {
		if _, err := svc.AddMeal(ctx, user.ID, MealInput{
			Name: "m", AteAt: base.AddDate(0, 0, offset),
		}); err != nil {
			t.Fatalf("AddMeal: %v", err)
		}
	}

	from := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local)
	meals, err := svc.ListMealsByDateRange(ctx, user.ID, from, to)
	if err != nil {
		t.Fatalf("ListMealsByDateRange: %v", err)
	}
	if len(meals) != 2 {
		t.Errorf("meals in range = %d, want 2", len(meals))
	}
	if len(meals) == 2 && meals[0].AteAt.After(meals[1].AteAt) {
		t.Error("range listing not ascending")
	}
}
