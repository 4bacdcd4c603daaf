package services

import (
	"strings"

	"backend/models"
)

// Inbound shapes use pointers so "missing" and "zero" stay distinguishable.
// The contract is never reject, always coerce to a complete record.

type rawMealPlan struct {
	WeeklyPlan []rawDay `json:"weekly_plan"`
}

type rawDay struct {
	Day   *string   `json:"day"`
	Meals []rawMeal `json:"meals"`
}

type rawMeal struct {
	Name              *string             `json:"name"`
	MealTiming        *string             `json:"meal_timing"`
	DietaryCategory   *string             `json:"dietary_category"`
	Calories          *float64            `json:"calories"`
	ProteinG          *float64            `json:"protein_g"`
	CarbsG            *float64            `json:"carbs_g"`
	FatsG             *float64            `json:"fats_g"`
	FiberG            *float64            `json:"fiber_g"`
	SugarG            *float64            `json:"sugar_g"`
	SodiumMg          *float64            `json:"sodium_mg"`
	PrepTimeMinutes   *int                `json:"prep_time_minutes"`
	DifficultyLevel   *int                `json:"difficulty_level"`
	Ingredients       []models.Ingredient `json:"ingredients"`
	Instructions      []string            `json:"instructions"`
	Allergens         []string            `json:"allergens"`
	ImageURL          *string             `json:"image_url"`
	PortionMultiplier *float64            `json:"portion_multiplier"`
	IsOptional        *bool               `json:"is_optional"`
}

type rawAnalysis struct {
	Name     *string  `json:"name"`
	Calories *float64 `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
	FiberG   *float64 `json:"fiber_g"`
	SugarG   *float64 `json:"sugar_g"`
	SodiumMg *float64 `json:"sodium_mg"`
}

func strOr(p *string, def string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return def
	}
	return strings.TrimSpace(*p)
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// coerceMeal fills every absent field with a sensible default.
func coerceMeal(r rawMeal) AIMeal {
	timing := strings.ToUpper(strOr(r.MealTiming, "BREAKFAST"))
	if !mealTimings[timing] {
		timing = "BREAKFAST"
	}

	multiplier := floatOr(r.PortionMultiplier, 1.0)
	if multiplier <= 0 {
		multiplier = 1.0
	}

	m := AIMeal{
		Name:              strOr(r.Name, "Balanced Meal"),
		MealTiming:        timing,
		DietaryCategory:   strings.ToUpper(strOr(r.DietaryCategory, "BALANCED")),
		Calories:          floatOr(r.Calories, 400),
		ProteinG:          floatOr(r.ProteinG, 20),
		CarbsG:            floatOr(r.CarbsG, 40),
		FatsG:             floatOr(r.FatsG, 15),
		FiberG:            floatOr(r.FiberG, 5),
		SugarG:            floatOr(r.SugarG, 5),
		SodiumMg:          floatOr(r.SodiumMg, 500),
		PrepTimeMinutes:   intOr(r.PrepTimeMinutes, 30),
		DifficultyLevel:   intOr(r.DifficultyLevel, 2),
		Ingredients:       r.Ingredients,
		Instructions:      r.Instructions,
		Allergens:         r.Allergens,
		ImageURL:          strOr(r.ImageURL, ""),
		PortionMultiplier: multiplier,
	}
	if r.IsOptional != nil {
		m.IsOptional = *r.IsOptional
	}
	if m.Ingredients == nil {
		m.Ingredients = []models.Ingredient{}
	}
	if m.Instructions == nil {
		m.Instructions = []string{}
	}
	if m.Allergens == nil {
		m.Allergens = []string{}
	}
	return m
}

func coerceAnalysis(r rawAnalysis) MealAnalysis {
	return MealAnalysis{
		Name:     strOr(r.Name, "Mixed Meal"),
		Calories: floatOr(r.Calories, 400),
		ProteinG: floatOr(r.ProteinG, 20),
		CarbsG:   floatOr(r.CarbsG, 40),
		FatG:     floatOr(r.FatG, 15),
		FiberG:   floatOr(r.FiberG, 5),
		SugarG:   floatOr(r.SugarG, 5),
		SodiumMg: floatOr(r.SodiumMg, 500),
	}
}

// validateAndStructurePlan forces the response into exactly 7 coerced days.
// Days beyond the 7th are dropped; short responses are padded with the
// fallback archetypes so callers always see a complete week.
func validateAndStructurePlan(raw *rawMealPlan) *MealPlanResponse {
	out := &MealPlanResponse{WeeklyPlan: make([]DayPlan, 7)}
	for i := 0; i < 7; i++ {
		day := DayPlan{Day: DayNames[i]}
		if i < len(raw.WeeklyPlan) && len(raw.WeeklyPlan[i].Meals) > 0 {
			day.Meals = make([]AIMeal, 0, len(raw.WeeklyPlan[i].Meals))
			for _, rm := range raw.WeeklyPlan[i].Meals {
				day.Meals = append(day.Meals, coerceMeal(rm))
			}
		} else {
			day.Meals = fallbackDayMeals()
		}
		out.WeeklyPlan[i] = day
	}
	return out
}

// ---------- deterministic fallback ----------

// Hand-authored archetypes substituted when the model fails. Fixed macros
// keep the substitution reproducible and testable.
func fallbackMealForTiming(timing string) *AIMeal {
	var m AIMeal
	switch strings.ToUpper(timing) {
	case "LUNCH":
		m = AIMeal{
			Name: "Grilled Chicken Salad", MealTiming: "LUNCH", DietaryCategory: "BALANCED",
			Calories: 550, ProteinG: 42, CarbsG: 35, FatsG: 24, FiberG: 8, SugarG: 9, SodiumMg: 620,
			PrepTimeMinutes: 20, DifficultyLevel: 2,
			Ingredients: []models.Ingredient{
				{Name: "chicken breast", Quantity: 180, Unit: "g", Category: "protein"},
				{Name: "lettuce", Quantity: 80, Unit: "g", Category: "produce"},
				{Name: "tomato", Quantity: 100, Unit: "g", Category: "produce"},
				{Name: "olive oil", Quantity: 1, Unit: "tbsp", Category: "pantry"},
			},
			Instructions: []string{"Grill the chicken.", "Toss with vegetables and dressing."},
			Allergens:    []string{},
		}
	case "DINNER":
		m = AIMeal{
			Name: "Baked Salmon with Rice", MealTiming: "DINNER", DietaryCategory: "BALANCED",
			Calories: 650, ProteinG: 40, CarbsG: 60, FatsG: 25, FiberG: 5, SugarG: 4, SodiumMg: 540,
			PrepTimeMinutes: 35, DifficultyLevel: 2,
			Ingredients: []models.Ingredient{
				{Name: "salmon", Quantity: 160, Unit: "g", Category: "protein"},
				{Name: "rice", Quantity: 90, Unit: "g", Category: "grains"},
				{Name: "broccoli", Quantity: 120, Unit: "g", Category: "produce"},
			},
			Instructions: []string{"Bake salmon at 200C for 15 minutes.", "Serve over rice with steamed broccoli."},
			Allergens:    []string{"fish"},
		}
	default: // BREAKFAST and SNACK
		m = AIMeal{
			Name: "Oatmeal with Berries", MealTiming: "BREAKFAST", DietaryCategory: "BALANCED",
			Calories: 420, ProteinG: 16, CarbsG: 65, FatsG: 11, FiberG: 9, SugarG: 14, SodiumMg: 150,
			PrepTimeMinutes: 10, DifficultyLevel: 1,
			Ingredients: []models.Ingredient{
				{Name: "oats", Quantity: 70, Unit: "g", Category: "grains"},
				{Name: "milk", Quantity: 200, Unit: "ml", Category: "dairy"},
				{Name: "berries", Quantity: 80, Unit: "g", Category: "produce"},
			},
			Instructions: []string{"Simmer oats in milk.", "Top with berries."},
			Allergens:    []string{"dairy", "gluten"},
		}
		if strings.ToUpper(timing) == "SNACK" {
			m.MealTiming = "SNACK"
		}
	}
	m.PortionMultiplier = 1.0
	return &m
}

func fallbackDayMeals() []AIMeal {
	return []AIMeal{
		*fallbackMealForTiming("BREAKFAST"),
		*fallbackMealForTiming("LUNCH"),
		*fallbackMealForTiming("DINNER"),
	}
}

func fallbackWeeklyPlan() *MealPlanResponse {
	out := &MealPlanResponse{WeeklyPlan: make([]DayPlan, 7)}
	for i := 0; i < 7; i++ {
		out.WeeklyPlan[i] = DayPlan{Day: DayNames[i], Meals: fallbackDayMeals()}
	}
	return out
}
