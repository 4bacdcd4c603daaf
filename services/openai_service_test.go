package services

import (
	"context"
	"strings"
	"testing"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", `Here is your plan: {"a":1} enjoy!`, `{"a":1}`},
		{"nested braces", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`},
		{"no braces", "not json at all", "not json at all"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repairJSON(tt.in); got != tt.want {
				t.Errorf("repairJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoerceMealDefaults(t *testing.T) {
	m := coerceMeal(rawMeal{})

	if m.Name != "Balanced Meal" {
		t.Errorf("name = %q, want Balanced Meal", m.Name)
	}
	if m.MealTiming != "BREAKFAST" {
		t.Errorf("timing = %q, want BREAKFAST", m.MealTiming)
	}
	if m.Calories != 400 {
		t.Errorf("calories = %v, want 400", m.Calories)
	}
	if m.ProteinG != 20 || m.CarbsG != 40 || m.FatsG != 15 {
		t.Errorf("macros = %v/%v/%v, want 20/40/15", m.ProteinG, m.CarbsG, m.FatsG)
	}
	if m.PortionMultiplier != 1.0 {
		t.Errorf("multiplier = %v, want 1.0", m.PortionMultiplier)
	}
	if m.Ingredients == nil || m.Instructions == nil || m.Allergens == nil {
		t.Error("list fields must be non-nil after coercion")
	}
}

func TestCoerceMealKeepsProvidedValues(t *testing.T) {
	name := "  Lentil Soup "
	timing := "dinner"
	cal := 0.0 // explicit zero stays zero
	mult := -2.0

	m := coerceMeal(rawMeal{
		Name:              &name,
		MealTiming:        &timing,
		Calories:          &cal,
		PortionMultiplier: &mult,
	})

	if m.Name != "Lentil Soup" {
		t.Errorf("name = %q, want trimmed Lentil Soup", m.Name)
	}
	if m.MealTiming != "DINNER" {
		t.Errorf("timing = %q, want DINNER", m.MealTiming)
	}
	if m.Calories != 0 {
		t.Errorf("calories = %v, want explicit 0 preserved", m.Calories)
	}
	if m.PortionMultiplier != 1.0 {
		t.Errorf("multiplier = %v, non-positive must coerce to 1.0", m.PortionMultiplier)
	}
}

func TestCoerceMealRejectsUnknownTiming(t *testing.T) {
	timing := "BRUNCH"
	m := coerceMeal(rawMeal{MealTiming: &timing})
	if m.MealTiming != "BREAKFAST" {
		t.Errorf("timing = %q, want BREAKFAST for unknown input", m.MealTiming)
	}
}

func TestValidateAndStructurePlanAlwaysSevenDays(t *testing.T) {
	name := "Toast"
	short := &rawMealPlan{WeeklyPlan: []rawDay{
		{Meals: []rawMeal{{Name: &name}}},
		{Meals: []rawMeal{{Name: &name}}},
	}}

	out := validateAndStructurePlan(short)
	if len(out.WeeklyPlan) != 7 {
		t.Fatalf("days = %d, want 7", len(out.WeeklyPlan))
	}
	if out.WeeklyPlan[0].Meals[0].Name != "Toast" {
		t.Errorf("day 0 meal = %q, want Toast", out.WeeklyPlan[0].Meals[0].Name)
	}
	// padded days carry the full fallback trio
	for i := 2; i < 7; i++ {
		if len(out.WeeklyPlan[i].Meals) != 3 {
			t.Errorf("day %d has %d meals, want 3 fallback meals", i, len(out.WeeklyPlan[i].Meals))
		}
	}
	for i, day := range out.WeeklyPlan {
		if day.Day != DayNames[i] {
			t.Errorf("day %d named %q, want %q", i, day.Day, DayNames[i])
		}
	}
}

func TestValidateAndStructurePlanDropsExtraDays(t *testing.T) {
	name := "Meal"
	long := &rawMealPlan{}
	for i := 0; i < 10; i++ {
		long.WeeklyPlan = append(long.WeeklyPlan, rawDay{Meals: []rawMeal{{Name: &name}}})
	}

	out := validateAndStructurePlan(long)
	if len(out.WeeklyPlan) != 7 {
		t.Fatalf("days = %d, want 7", len(out.WeeklyPlan))
	}
}

func TestGenerateMealPlanFallsBackWithoutAPIKey(t *testing.T) {
	svc := &OpenAIService{} // no key, no client needed: callChat bails first

	resp, source := svc.GenerateMealPlan(context.Background(), MealPlanProfile{})
	if source != PlanSourceFallback {
		t.Fatalf("source = %q, want %q", source, PlanSourceFallback)
	}
	if len(resp.WeeklyPlan) != 7 {
		t.Fatalf("fallback days = %d, want 7", len(resp.WeeklyPlan))
	}
	for _, day := range resp.WeeklyPlan {
		if len(day.Meals) != 3 {
			t.Errorf("fallback day %s has %d meals, want 3", day.Day, len(day.Meals))
		}
	}
}

func TestGenerateReplacementMealFallbackRespectsTiming(t *testing.T) {
	svc := &OpenAIService{}

	meal, source := svc.GenerateReplacementMeal(context.Background(), ReplacementRequest{MealTiming: "lunch"})
	if source != PlanSourceFallback {
		t.Fatalf("source = %q, want %q", source, PlanSourceFallback)
	}
	if meal.MealTiming != "LUNCH" {
		t.Errorf("timing = %q, want LUNCH", meal.MealTiming)
	}
	if meal.PortionMultiplier != 1.0 {
		t.Errorf("multiplier = %v, want 1.0", meal.PortionMultiplier)
	}
}

func TestFallbackMealAnalysisUsesFirstHint(t *testing.T) {
	a := fallbackMealAnalysis([]string{"Pizza", "Cheese"})
	if a.Name != "Pizza" {
		t.Errorf("name = %q, want first hint", a.Name)
	}
	if a.Calories != 400 {
		t.Errorf("calories = %v, want 400", a.Calories)
	}

	b := fallbackMealAnalysis(nil)
	if b.Name != "Mixed Meal" {
		t.Errorf("name = %q, want Mixed Meal", b.Name)
	}
}

func TestBuildMealPlanPromptIncludesConstraints(t *testing.T) {
	p := MealPlanProfile{
		MealsPerDay:         3,
		SnacksPerDay:        1,
		TargetCalories:      2200,
		ExcludedIngredients: []string{"cilantro"},
		Allergies:           []string{"peanuts"},
	}
	prompt := buildMealPlanPrompt(p)

	for _, want := range []string{"3 meals plus 1 snacks", "2200 kcal", "cilantro", "peanuts"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
