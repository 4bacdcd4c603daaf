package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

// PlanGenerator is the AI boundary. OpenAIService implements it in
// production; tests substitute a stub so both the model branch and the
// fallback branch stay observable.
type PlanGenerator interface {
	GenerateMealPlan(ctx context.Context, profile MealPlanProfile) (*MealPlanResponse, PlanSource)
	GenerateReplacementMeal(ctx context.Context, req ReplacementRequest) (*AIMeal, PlanSource)
}

type MealPlanService struct {
	db     *gorm.DB
	ai     PlanGenerator
	events *EventBus
}

func NewMealPlanService(db *gorm.DB, ai PlanGenerator, events *EventBus) *MealPlanService {
	return &MealPlanService{db: db, ai: ai, events: events}
}

// PlanConfig is the request body for plan creation. Numeric ranges are
// enforced by binding at the route layer; the service trusts them.
type PlanConfig struct {
	Name                  string   `json:"name" binding:"required"`
	MealsPerDay           int      `json:"meals_per_day" binding:"required,min=2,max=6"`
	SnacksPerDay          int      `json:"snacks_per_day" binding:"min=0,max=3"`
	RotationFrequencyDays int      `json:"rotation_frequency_days" binding:"required,min=1,max=14"`
	IncludeLeftovers      bool     `json:"include_leftovers"`
	FixedMealTimes        bool     `json:"fixed_meal_times"`
	DietaryPreferences    []string `json:"dietary_preferences"`
	ExcludedIngredients   []string `json:"excluded_ingredients"`
}

// StoreReport is the structured partial-failure report for template and
// schedule persistence. Skipped meals are logged, never surfaced as errors.
type StoreReport struct {
	Source           PlanSource    `json:"source"`
	TemplatesCreated int           `json:"templates_created"`
	SchedulesCreated int           `json:"schedules_created"`
	Skipped          []SkippedMeal `json:"skipped,omitempty"`
}

type SkippedMeal struct {
	Day        string `json:"day"`
	MealTiming string `json:"meal_timing"`
	Reason     string `json:"reason"`
}

// CreateUserMealPlan builds the flattened profile, asks the AI for a week,
// and persists plan + templates + schedule in one transaction. The prior
// active plan is deactivated in the same transaction, so at most one plan
// is active per user.
func (s *MealPlanService) CreateUserMealPlan(ctx context.Context, userID uint, cfg PlanConfig) (*models.UserMealPlan, *StoreReport, error) {
	profile := s.buildProfile(ctx, userID, cfg)

	resp, source := s.ai.GenerateMealPlan(ctx, profile)
	for _, day := range resp.WeeklyPlan {
		warnAllergenConflicts(profile.Allergies, day.Meals...)
	}

	plan := &models.UserMealPlan{
		UserID:                userID,
		Name:                  cfg.Name,
		IsActive:              true,
		StartDate:             time.Now(),
		MealsPerDay:           cfg.MealsPerDay,
		SnacksPerDay:          cfg.SnacksPerDay,
		RotationFrequencyDays: cfg.RotationFrequencyDays,
		IncludeLeftovers:      cfg.IncludeLeftovers,
		FixedMealTimes:        cfg.FixedMealTimes,
		TargetCalories:        profile.TargetCalories,
		TargetProteinG:        profile.TargetProteinG,
		TargetCarbsG:          profile.TargetCarbsG,
		TargetFatG:            profile.TargetFatG,
		DietaryPreferences:    joinList(cfg.DietaryPreferences),
		ExcludedIngredients:   joinList(cfg.ExcludedIngredients),
	}

	var report *StoreReport
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.UserMealPlan{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Create(plan).Error; err != nil {
			return err
		}
		var err error
		report, err = storeTemplatesAndSchedule(tx, plan.ID, resp)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create meal plan: %w", err)
	}
	report.Source = source

	if len(report.Skipped) > 0 {
		log.Printf("meal plan %d stored with %d skipped meals", plan.ID, len(report.Skipped))
	}
	if s.events != nil {
		s.events.Emit(userID, "plan.created", map[string]any{
			"plan_id": plan.ID, "name": plan.Name, "source": source,
		})
	}
	return plan, report, nil
}

// buildProfile merges config, latest questionnaire, latest goal and the
// documented fallback constants. Missing rows are tolerated.
func (s *MealPlanService) buildProfile(ctx context.Context, userID uint, cfg PlanConfig) MealPlanProfile {
	profile := MealPlanProfile{
		PlanName:              cfg.Name,
		MealsPerDay:           cfg.MealsPerDay,
		SnacksPerDay:          cfg.SnacksPerDay,
		RotationFrequencyDays: cfg.RotationFrequencyDays,
		IncludeLeftovers:      cfg.IncludeLeftovers,
		FixedMealTimes:        cfg.FixedMealTimes,
		DietaryPreferences:    cfg.DietaryPreferences,
		ExcludedIngredients:   cfg.ExcludedIngredients,
		TargetCalories:        utils.DefaultCalories,
		TargetProteinG:        utils.DefaultProteinG,
		TargetCarbsG:          utils.DefaultCarbsG,
		TargetFatG:            utils.DefaultFatG,
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err == nil {
		profile.HeightCm = user.HeightCm
		profile.WeightKg = user.WeightKg
		if !user.Birthday.IsZero() {
			profile.Age = utils.CalculateAge(user.Birthday)
		}
	}

	var q models.Questionnaire
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").
		First(&q).Error; err == nil {
		profile.Allergies = splitList(q.Allergies)
		profile.CookingSkill = q.CookingSkill
		if len(profile.DietaryPreferences) == 0 {
			profile.DietaryPreferences = splitList(q.DietaryPreferences)
		}
	}

	var goal models.NutritionGoal
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&goal).Error; err == nil {
		if goal.Calories > 0 {
			profile.TargetCalories = goal.Calories
		}
		if goal.ProteinG > 0 {
			profile.TargetProteinG = goal.ProteinG
		}
		if goal.CarbsG > 0 {
			profile.TargetCarbsG = goal.CarbsG
		}
		if goal.FatG > 0 {
			profile.TargetFatG = goal.FatG
		}
	}

	return profile
}

// storeTemplatesAndSchedule inserts one template per distinct
// (name, meal_timing) in this call and a schedule row per slot. Runs inside
// the caller's transaction: database errors roll the whole plan back, while
// per-meal validation problems are skipped and reported.
func storeTemplatesAndSchedule(tx *gorm.DB, planID uint, resp *MealPlanResponse) (*StoreReport, error) {
	report := &StoreReport{}
	templates := make(map[string]*models.MealTemplate)

	for dayIdx, day := range resp.WeeklyPlan {
		if dayIdx > 6 {
			break
		}
		orderByTiming := make(map[string]int)

		for _, meal := range day.Meals {
			if strings.TrimSpace(meal.Name) == "" {
				report.Skipped = append(report.Skipped, SkippedMeal{
					Day: day.Day, MealTiming: meal.MealTiming, Reason: "empty meal name",
				})
				continue
			}

			key := strings.ToLower(meal.Name) + "|" + meal.MealTiming
			tpl, ok := templates[key]
			if !ok {
				var err error
				tpl, err = templateFromAIMeal(meal)
				if err != nil {
					report.Skipped = append(report.Skipped, SkippedMeal{
						Day: day.Day, MealTiming: meal.MealTiming, Reason: err.Error(),
					})
					continue
				}
				if err := tx.Create(tpl).Error; err != nil {
					return nil, err
				}
				templates[key] = tpl
				report.TemplatesCreated++
			}

			order := orderByTiming[meal.MealTiming]
			orderByTiming[meal.MealTiming]++

			sched := &models.MealPlanSchedule{
				PlanID:            planID,
				TemplateID:        tpl.ID,
				DayOfWeek:         dayIdx,
				MealTiming:        meal.MealTiming,
				MealOrder:         order,
				PortionMultiplier: meal.PortionMultiplier,
				IsOptional:        meal.IsOptional,
			}
			if err := tx.Create(sched).Error; err != nil {
				return nil, err
			}
			report.SchedulesCreated++
		}
	}
	return report, nil
}

func templateFromAIMeal(meal AIMeal) (*models.MealTemplate, error) {
	ingredients, err := json.Marshal(meal.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("bad ingredients: %w", err)
	}
	instructions, err := json.Marshal(meal.Instructions)
	if err != nil {
		return nil, fmt.Errorf("bad instructions: %w", err)
	}
	allergens, err := json.Marshal(meal.Allergens)
	if err != nil {
		return nil, fmt.Errorf("bad allergens: %w", err)
	}

	return &models.MealTemplate{
		Name:             meal.Name,
		MealTiming:       meal.MealTiming,
		DietaryCategory:  meal.DietaryCategory,
		Calories:         meal.Calories,
		ProteinG:         meal.ProteinG,
		CarbsG:           meal.CarbsG,
		FatsG:            meal.FatsG,
		FiberG:           meal.FiberG,
		SugarG:           meal.SugarG,
		SodiumMg:         meal.SodiumMg,
		PrepTimeMinutes:  meal.PrepTimeMinutes,
		DifficultyLevel:  meal.DifficultyLevel,
		IngredientsJSON:  string(ingredients),
		InstructionsJSON: string(instructions),
		AllergensJSON:    string(allergens),
		ImageURL:         meal.ImageURL,
	}, nil
}

// ---------- weekly view ----------

type ScheduledMealView struct {
	ScheduleID        uint                `json:"schedule_id"`
	TemplateID        uint                `json:"template_id"`
	Name              string              `json:"name"`
	MealTiming        string              `json:"meal_timing"`
	MealOrder         int                 `json:"meal_order"`
	DietaryCategory   string              `json:"dietary_category"`
	Calories          float64             `json:"calories"`
	ProteinG          float64             `json:"protein_g"`
	CarbsG            float64             `json:"carbs_g"`
	FatsG             float64             `json:"fats_g"`
	FiberG            float64             `json:"fiber_g"`
	SugarG            float64             `json:"sugar_g"`
	SodiumMg          float64             `json:"sodium_mg"`
	PrepTimeMinutes   int                 `json:"prep_time_minutes"`
	DifficultyLevel   int                 `json:"difficulty_level"`
	PortionMultiplier float64             `json:"portion_multiplier"`
	IsOptional        bool                `json:"is_optional"`
	Ingredients       []models.Ingredient `json:"ingredients"`
	Instructions      []string            `json:"instructions"`
	Allergens         []string            `json:"allergens"`
	ImageURL          string              `json:"image_url,omitempty"`
}

type PlanDayView struct {
	Day   string                         `json:"day"`
	Meals map[string][]ScheduledMealView `json:"meals"` // keyed by meal timing
}

type WeeklyPlanView struct {
	PlanID         uint          `json:"plan_id"`
	Name           string        `json:"name"`
	IsActive       bool          `json:"is_active"`
	StartDate      time.Time     `json:"start_date"`
	TargetCalories float64       `json:"target_calories"`
	TargetProteinG float64       `json:"target_protein_g"`
	TargetCarbsG   float64       `json:"target_carbs_g"`
	TargetFatG     float64       `json:"target_fat_g"`
	Days           []PlanDayView `json:"days"` // always 7, Sunday first
}

// GetUserMealPlan loads a plan (the active one when planID is 0), groups
// schedules by day then timing, and scales stored macros by each slot's
// portion multiplier. Gram macros round to 1 decimal; calories and sodium
// to whole numbers. Pure read.
func (s *MealPlanService) GetUserMealPlan(ctx context.Context, userID, planID uint) (*WeeklyPlanView, error) {
	var plan models.UserMealPlan
	q := s.db.WithContext(ctx).
		Preload("Schedules", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week ASC, meal_timing ASC, meal_order ASC")
		}).
		Preload("Schedules.Template")
	var err error
	if planID == 0 {
		err = q.Where("user_id = ? AND is_active = ?", userID, true).First(&plan).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("no active meal plan found")
		}
	} else {
		err = q.Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("meal plan not found")
		}
	}
	if err != nil {
		return nil, err
	}

	view := &WeeklyPlanView{
		PlanID:         plan.ID,
		Name:           plan.Name,
		IsActive:       plan.IsActive,
		StartDate:      plan.StartDate,
		TargetCalories: plan.TargetCalories,
		TargetProteinG: plan.TargetProteinG,
		TargetCarbsG:   plan.TargetCarbsG,
		TargetFatG:     plan.TargetFatG,
		Days:           make([]PlanDayView, 7),
	}
	for i := range view.Days {
		view.Days[i] = PlanDayView{Day: DayNames[i], Meals: make(map[string][]ScheduledMealView)}
	}

	for _, sched := range plan.Schedules {
		if sched.DayOfWeek < 0 || sched.DayOfWeek > 6 {
			continue
		}
		mv := scheduledMealView(sched)
		day := &view.Days[sched.DayOfWeek]
		day.Meals[sched.MealTiming] = append(day.Meals[sched.MealTiming], mv)
	}
	return view, nil
}

func scheduledMealView(sched models.MealPlanSchedule) ScheduledMealView {
	t := sched.Template
	mult := sched.PortionMultiplier
	if mult <= 0 {
		mult = 1
	}

	mv := ScheduledMealView{
		ScheduleID:        sched.ID,
		TemplateID:        t.ID,
		Name:              t.Name,
		MealTiming:        sched.MealTiming,
		MealOrder:         sched.MealOrder,
		DietaryCategory:   t.DietaryCategory,
		Calories:          math.Round(t.Calories * mult),
		ProteinG:          round1(t.ProteinG * mult),
		CarbsG:            round1(t.CarbsG * mult),
		FatsG:             round1(t.FatsG * mult),
		FiberG:            round1(t.FiberG * mult),
		SugarG:            round1(t.SugarG * mult),
		SodiumMg:          math.Round(t.SodiumMg * mult),
		PrepTimeMinutes:   t.PrepTimeMinutes,
		DifficultyLevel:   t.DifficultyLevel,
		PortionMultiplier: mult,
		IsOptional:        sched.IsOptional,
		ImageURL:          t.ImageURL,
	}
	mv.Ingredients = decodeIngredients(t.IngredientsJSON)
	mv.Instructions = decodeStrings(t.InstructionsJSON)
	mv.Allergens = decodeStrings(t.AllergensJSON)
	return mv
}

// ---------- meal replacement ----------

type ReplacePreferences struct {
	DietaryCategory string `json:"dietary_category"`
	MaxPrepTime     int    `json:"max_prep_time"`
}

type ReplaceMealRequest struct {
	DayOfWeek   int                 `json:"day_of_week" binding:"min=0,max=6"`
	MealTiming  string              `json:"meal_timing" binding:"required"`
	MealOrder   int                 `json:"meal_order" binding:"min=0"`
	Preferences *ReplacePreferences `json:"preferences"`
}

// ReplaceMealInPlan swaps the template at one schedule slot for a freshly
// generated meal. Only template_id changes on the schedule row; the old
// template stays for reuse elsewhere.
func (s *MealPlanService) ReplaceMealInPlan(ctx context.Context, userID, planID uint, req ReplaceMealRequest) (*ScheduledMealView, PlanSource, error) {
	var plan models.UserMealPlan
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", planID, userID).
		First(&plan).Error; err != nil {
		return nil, "", errors.New("meal plan not found")
	}

	timing := strings.ToUpper(req.MealTiming)
	var sched models.MealPlanSchedule
	if err := s.db.WithContext(ctx).
		Preload("Template").
		Where("plan_id = ? AND day_of_week = ? AND meal_timing = ? AND meal_order = ?",
			planID, req.DayOfWeek, timing, req.MealOrder).
		First(&sched).Error; err != nil {
		return nil, "", errors.New("meal not found in plan")
	}

	var allergies []string
	var q models.Questionnaire
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").
		First(&q).Error; err == nil {
		allergies = splitList(q.Allergies)
	}

	genReq := ReplacementRequest{
		CurrentName:         sched.Template.Name,
		MealTiming:          timing,
		AnchorCalories:      sched.Template.Calories,
		AnchorProteinG:      sched.Template.ProteinG,
		AnchorCarbsG:        sched.Template.CarbsG,
		AnchorFatsG:         sched.Template.FatsG,
		DietaryPreferences:  splitList(plan.DietaryPreferences),
		ExcludedIngredients: splitList(plan.ExcludedIngredients),
		Allergies:           allergies,
	}
	if req.Preferences != nil {
		genReq.DietaryCategory = req.Preferences.DietaryCategory
		genReq.MaxPrepTime = req.Preferences.MaxPrepTime
	}

	meal, source := s.ai.GenerateReplacementMeal(ctx, genReq)
	warnAllergenConflicts(allergies, *meal)

	tpl, err := templateFromAIMeal(*meal)
	if err != nil {
		return nil, "", fmt.Errorf("failed to store replacement meal: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(tpl).Error; err != nil {
		return nil, "", fmt.Errorf("failed to store replacement meal: %w", err)
	}
	// Update by primary key rather than through sched: the loaded Template
	// association would make GORM write back the old template_id.
	if err := s.db.WithContext(ctx).Model(&models.MealPlanSchedule{}).
		Where("id = ?", sched.ID).
		Update("template_id", tpl.ID).Error; err != nil {
		return nil, "", fmt.Errorf("failed to update schedule: %w", err)
	}

	sched.TemplateID = tpl.ID
	sched.Template = *tpl
	mv := scheduledMealView(sched)

	if s.events != nil {
		s.events.Emit(userID, "meal.replaced", map[string]any{
			"plan_id": planID, "day_of_week": req.DayOfWeek,
			"meal_timing": timing, "meal_order": req.MealOrder,
			"template_id": tpl.ID, "source": source,
		})
	}
	return &mv, source, nil
}

// ---------- preferences ----------

func (s *MealPlanService) UpsertMealPreference(ctx context.Context, userID, templateID uint, prefType string, rating int, notes string) (*models.UserMealPreference, error) {
	var tpl models.MealTemplate
	if err := s.db.WithContext(ctx).First(&tpl, templateID).Error; err != nil {
		return nil, errors.New("meal template not found")
	}

	var pref models.UserMealPreference
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND template_id = ? AND preference_type = ?", userID, templateID, prefType).
		First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pref = models.UserMealPreference{
			UserID: userID, TemplateID: templateID, PreferenceType: prefType,
			Rating: rating, Notes: notes,
		}
		if err := s.db.WithContext(ctx).Create(&pref).Error; err != nil {
			return nil, err
		}
		return &pref, nil
	}
	if err != nil {
		return nil, err
	}

	pref.Rating = rating
	pref.Notes = notes
	if err := s.db.WithContext(ctx).Save(&pref).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}

// ---------- helpers ----------

// warnAllergenConflicts logs generated meals that clash with the user's
// stated allergies. Prompts exclude them, but model output is untrusted.
func warnAllergenConflicts(allergies []string, meals ...AIMeal) {
	if len(allergies) == 0 {
		return
	}
	for _, meal := range meals {
		names := make([]string, 0, len(meal.Ingredients))
		for _, ing := range meal.Ingredients {
			names = append(names, ing.Name)
		}
		if conflicts := utils.FindAllergenConflicts(allergies, meal.Allergens, names); len(conflicts) > 0 {
			log.Printf("generated meal %q conflicts with allergies %v", meal.Name, conflicts)
		}
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func joinList(items []string) string { return strings.Join(items, ",") }

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func decodeIngredients(raw string) []models.Ingredient {
	out := []models.Ingredient{}
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &out)
	}
	return out
}

func decodeStrings(raw string) []string {
	out := []string{}
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &out)
	}
	return out
}
