package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"backend/models"
)

// PlanSource tells callers (and tests) whether structured data came from
// the model or from the deterministic fallback branch.
type PlanSource string

const (
	PlanSourceModel    PlanSource = "model"
	PlanSourceFallback PlanSource = "fallback"
)

// Canonical day names, index = day_of_week (0=Sunday).
var DayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var mealTimings = map[string]bool{
	"BREAKFAST": true, "LUNCH": true, "DINNER": true, "SNACK": true,
}

type OpenAIService struct {
	client  *http.Client
	apiKey  string
	baseURL string
	model   string
}

func NewOpenAIService() *OpenAIService {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIService{
		client:  &http.Client{Timeout: 60 * time.Second}, // plan generation is slow
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: baseURL,
		model:   model,
	}
}

// MealPlanProfile is the flattened merge of plan config, questionnaire,
// goals and fallback constants that prompts are built from.
type MealPlanProfile struct {
	PlanName              string
	MealsPerDay           int
	SnacksPerDay          int
	RotationFrequencyDays int
	IncludeLeftovers      bool
	FixedMealTimes        bool
	DietaryPreferences    []string
	ExcludedIngredients   []string
	Allergies             []string
	CookingSkill          string

	TargetCalories float64
	TargetProteinG float64
	TargetCarbsG   float64
	TargetFatG     float64

	Age      int
	HeightCm float64
	WeightKg float64
}

// AIMeal is one fully-coerced meal record. Every field is populated; the
// validation layer never rejects.
type AIMeal struct {
	Name              string              `json:"name"`
	MealTiming        string              `json:"meal_timing"`
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
	Ingredients       []models.Ingredient `json:"ingredients"`
	Instructions      []string            `json:"instructions"`
	Allergens         []string            `json:"allergens"`
	ImageURL          string              `json:"image_url,omitempty"`
	PortionMultiplier float64             `json:"portion_multiplier"`
	IsOptional        bool                `json:"is_optional"`
}

type DayPlan struct {
	Day   string   `json:"day"`
	Meals []AIMeal `json:"meals"`
}

// MealPlanResponse always carries exactly 7 days after validation.
type MealPlanResponse struct {
	WeeklyPlan []DayPlan `json:"weekly_plan"`
}

// MealAnalysis is the structured result of analyzing a meal photo.
type MealAnalysis struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	SugarG   float64 `json:"sugar_g"`
	SodiumMg float64 `json:"sodium_mg"`
}

// ReplacementRequest anchors a single-meal regeneration on the meal being
// swapped out so the replacement lands near the same macros.
type ReplacementRequest struct {
	CurrentName         string
	MealTiming          string
	AnchorCalories      float64
	AnchorProteinG      float64
	AnchorCarbsG        float64
	AnchorFatsG         float64
	DietaryPreferences  []string
	ExcludedIngredients []string
	Allergies           []string
	DietaryCategory     string // optional override
	MaxPrepTime         int    // optional override, minutes
}

// ---------- chat plumbing ----------

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *OpenAIService) callChat(ctx context.Context, messages []chatMessage, maxTokens int) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	body, err := json.Marshal(chatRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: 0.4,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call chat API: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr chatResponse
		if json.Unmarshal(respBytes, &apiErr) == nil && apiErr.Error != nil {
			return "", fmt.Errorf("chat API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("chat API error (%d): %s", resp.StatusCode, string(respBytes))
	}

	var out chatResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return "", fmt.Errorf("failed to parse chat JSON: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty completion")
	}
	return out.Choices[0].Message.Content, nil
}

// repairJSON strips markdown fences and anything outside the outermost
// braces. Models wrap JSON in prose often enough that this is routine.
func repairJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// ---------- weekly plan generation ----------

func (s *OpenAIService) GenerateMealPlan(ctx context.Context, profile MealPlanProfile) (*MealPlanResponse, PlanSource) {
	content, err := s.callChat(ctx, []chatMessage{
		{Role: "system", Content: "You are a nutritionist generating structured weekly meal plans. Respond with JSON only, no prose."},
		{Role: "user", Content: buildMealPlanPrompt(profile)},
	}, 8000)
	if err != nil {
		log.Printf("meal plan generation failed, using fallback plan: %v", err)
		return fallbackWeeklyPlan(), PlanSourceFallback
	}

	var raw rawMealPlan
	if err := json.Unmarshal([]byte(repairJSON(content)), &raw); err != nil {
		log.Printf("meal plan response unparseable, using fallback plan: %v", err)
		return fallbackWeeklyPlan(), PlanSourceFallback
	}
	if len(raw.WeeklyPlan) == 0 {
		log.Printf("meal plan response has no weekly_plan, using fallback plan")
		return fallbackWeeklyPlan(), PlanSourceFallback
	}

	return validateAndStructurePlan(&raw), PlanSourceModel
}

func buildMealPlanPrompt(p MealPlanProfile) string {
	var sb strings.Builder
	sb.WriteString("Create a 7-day meal plan as JSON with this exact shape:\n")
	sb.WriteString(`{"weekly_plan":[{"day":"Sunday","meals":[{"name":"","meal_timing":"BREAKFAST","dietary_category":"BALANCED","calories":0,"protein_g":0,"carbs_g":0,"fats_g":0,"fiber_g":0,"sugar_g":0,"sodium_mg":0,"prep_time_minutes":0,"difficulty_level":1,"ingredients":[{"name":"","quantity":0,"unit":"g","category":""}],"instructions":[],"allergens":[],"portion_multiplier":1,"is_optional":false}]}]}`)
	sb.WriteString("\n\nRequirements:\n")
	fmt.Fprintf(&sb, "- Exactly 7 days (Sunday through Saturday), %d meals plus %d snacks per day.\n", p.MealsPerDay, p.SnacksPerDay)
	fmt.Fprintf(&sb, "- Daily targets: %.0f kcal, %.0f g protein, %.0f g carbs, %.0f g fat.\n",
		p.TargetCalories, p.TargetProteinG, p.TargetCarbsG, p.TargetFatG)
	if len(p.DietaryPreferences) > 0 {
		fmt.Fprintf(&sb, "- Dietary preferences: %s.\n", strings.Join(p.DietaryPreferences, ", "))
	}
	if len(p.ExcludedIngredients) > 0 {
		fmt.Fprintf(&sb, "- Never use these ingredients: %s.\n", strings.Join(p.ExcludedIngredients, ", "))
	}
	if len(p.Allergies) > 0 {
		fmt.Fprintf(&sb, "- The user is allergic to: %s. Exclude them and list allergens per meal.\n", strings.Join(p.Allergies, ", "))
	}
	if p.IncludeLeftovers {
		fmt.Fprintf(&sb, "- Reuse dinner recipes as next-day lunches where sensible (rotation window %d days).\n", p.RotationFrequencyDays)
	}
	if p.CookingSkill != "" {
		fmt.Fprintf(&sb, "- Cooking skill: %s; keep difficulty appropriate.\n", p.CookingSkill)
	}
	if p.Age > 0 {
		fmt.Fprintf(&sb, "- User: age %d, %.0f cm, %.0f kg.\n", p.Age, p.HeightCm, p.WeightKg)
	}
	return sb.String()
}

// ---------- single meal replacement ----------

func (s *OpenAIService) GenerateReplacementMeal(ctx context.Context, req ReplacementRequest) (*AIMeal, PlanSource) {
	content, err := s.callChat(ctx, []chatMessage{
		{Role: "system", Content: "You are a nutritionist generating one structured meal. Respond with a single JSON object, no prose."},
		{Role: "user", Content: buildReplacementPrompt(req)},
	}, 2000)
	if err != nil {
		log.Printf("replacement meal generation failed, using fallback: %v", err)
		return fallbackMealForTiming(req.MealTiming), PlanSourceFallback
	}

	var raw rawMeal
	if err := json.Unmarshal([]byte(repairJSON(content)), &raw); err != nil {
		log.Printf("replacement meal response unparseable, using fallback: %v", err)
		return fallbackMealForTiming(req.MealTiming), PlanSourceFallback
	}

	meal := coerceMeal(raw)
	if meal.MealTiming != strings.ToUpper(req.MealTiming) && mealTimings[strings.ToUpper(req.MealTiming)] {
		meal.MealTiming = strings.ToUpper(req.MealTiming) // slot timing wins
	}
	return &meal, PlanSourceModel
}

func buildReplacementPrompt(r ReplacementRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate one %s meal to replace %q. ", strings.ToUpper(r.MealTiming), r.CurrentName)
	fmt.Fprintf(&sb, "Stay close to these macros: %.0f kcal, %.0f g protein, %.0f g carbs, %.0f g fat.\n",
		r.AnchorCalories, r.AnchorProteinG, r.AnchorCarbsG, r.AnchorFatsG)
	if len(r.DietaryPreferences) > 0 {
		fmt.Fprintf(&sb, "Dietary preferences: %s.\n", strings.Join(r.DietaryPreferences, ", "))
	}
	if len(r.ExcludedIngredients) > 0 {
		fmt.Fprintf(&sb, "Never use: %s.\n", strings.Join(r.ExcludedIngredients, ", "))
	}
	if len(r.Allergies) > 0 {
		fmt.Fprintf(&sb, "Allergies: %s.\n", strings.Join(r.Allergies, ", "))
	}
	if r.DietaryCategory != "" {
		fmt.Fprintf(&sb, "Dietary category: %s.\n", r.DietaryCategory)
	}
	if r.MaxPrepTime > 0 {
		fmt.Fprintf(&sb, "Prep time at most %d minutes.\n", r.MaxPrepTime)
	}
	sb.WriteString(`Respond with one JSON object shaped like: {"name":"","meal_timing":"","dietary_category":"","calories":0,"protein_g":0,"carbs_g":0,"fats_g":0,"fiber_g":0,"sugar_g":0,"sodium_mg":0,"prep_time_minutes":0,"difficulty_level":1,"ingredients":[],"instructions":[],"allergens":[]}`)
	return sb.String()
}

// ---------- meal photo analysis ----------

func (s *OpenAIService) AnalyzeMealImage(ctx context.Context, imageURL string, labelHints []string) (*MealAnalysis, PlanSource) {
	prompt := "Estimate the nutrition of the pictured meal. Respond with one JSON object: " +
		`{"name":"","calories":0,"protein_g":0,"carbs_g":0,"fat_g":0,"fiber_g":0,"sugar_g":0,"sodium_mg":0}`
	if len(labelHints) > 0 {
		prompt += "\nDetected labels (hints, may be wrong): " + strings.Join(labelHints, ", ")
	}

	content, err := s.callChat(ctx, []chatMessage{
		{Role: "user", Content: []map[string]any{
			{"type": "text", "text": prompt},
			{"type": "image_url", "image_url": map[string]string{"url": imageURL}},
		}},
	}, 500)
	if err != nil {
		log.Printf("meal image analysis failed, using fallback estimate: %v", err)
		return fallbackMealAnalysis(labelHints), PlanSourceFallback
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(repairJSON(content)), &raw); err != nil {
		log.Printf("meal image analysis unparseable, using fallback estimate: %v", err)
		return fallbackMealAnalysis(labelHints), PlanSourceFallback
	}

	out := coerceAnalysis(raw)
	return &out, PlanSourceModel
}

func fallbackMealAnalysis(labelHints []string) *MealAnalysis {
	name := "Mixed Meal"
	if len(labelHints) > 0 {
		name = labelHints[0]
	}
	return &MealAnalysis{
		Name: name, Calories: 400, ProteinG: 20, CarbsG: 40, FatG: 15,
		FiberG: 5, SugarG: 5, SodiumMg: 500,
	}
}
