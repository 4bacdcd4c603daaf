package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

// MealAnalyzer is the vision boundary for photo logging.
type MealAnalyzer interface {
	AnalyzeMealImage(ctx context.Context, imageURL string, labelHints []string) (*MealAnalysis, PlanSource)
}

type NutritionService struct {
	db  *gorm.DB
	ai  MealAnalyzer
	rek *RekognitionService // optional, label hints only
}

func NewNutritionService(db *gorm.DB, ai MealAnalyzer, rek *RekognitionService) *NutritionService {
	return &NutritionService{db: db, ai: ai, rek: rek}
}

// LogMealFromPhoto uploads the photo, collects best-effort label hints,
// runs vision analysis and persists the nutrition snapshot. Analysis never
// fails the request; the fallback estimate is recorded with its source.
func (s *NutritionService) LogMealFromPhoto(ctx context.Context, userID uint, mealType string, ateAt time.Time, base64Image string) (*models.Meal, error) {
	imageURL, err := utils.UploadBase64ImageToS3(base64Image, userIDPrefix(userID))
	if err != nil {
		return nil, err
	}

	var hints []string
	if s.rek != nil {
		hints, err = s.rek.DetectFoodLabels(base64Image)
		if err != nil {
			log.Printf("label detection failed, continuing without hints: %v", err)
		}
	}

	analysis, source := s.ai.AnalyzeMealImage(ctx, imageURL, hints)

	meal := &models.Meal{
		UserID:         userID,
		Name:           analysis.Name,
		Type:           mealType,
		AteAt:          ateAt,
		ImageURL:       imageURL,
		Calories:       analysis.Calories,
		ProteinG:       analysis.ProteinG,
		CarbsG:         analysis.CarbsG,
		FatG:           analysis.FatG,
		FiberG:         analysis.FiberG,
		SugarG:         analysis.SugarG,
		SodiumMg:       analysis.SodiumMg,
		AnalysisSource: string(source),
	}
	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, err
	}
	return meal, nil
}

type MealInput struct {
	Name     string    `json:"name" binding:"required"`
	Type     string    `json:"type"`
	AteAt    time.Time `json:"ate_at"`
	Calories float64   `json:"calories"`
	ProteinG float64   `json:"protein_g"`
	CarbsG   float64   `json:"carbs_g"`
	FatG     float64   `json:"fat_g"`
	FiberG   float64   `json:"fiber_g"`
	SugarG   float64   `json:"sugar_g"`
	SodiumMg float64   `json:"sodium_mg"`
}

func (s *NutritionService) AddMeal(ctx context.Context, userID uint, in MealInput) (*models.Meal, error) {
	ateAt := in.AteAt
	if ateAt.IsZero() {
		ateAt = time.Now()
	}
	meal := &models.Meal{
		UserID: userID, Name: in.Name, Type: in.Type, AteAt: ateAt,
		Calories: in.Calories, ProteinG: in.ProteinG, CarbsG: in.CarbsG,
		FatG: in.FatG, FiberG: in.FiberG, SugarG: in.SugarG, SodiumMg: in.SodiumMg,
		AnalysisSource: "manual",
	}
	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *NutritionService) GetMeal(ctx context.Context, userID, mealID uint) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("meal not found")
	}
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

func (s *NutritionService) ListMeals(ctx context.Context, userID uint) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("ate_at DESC").
		Find(&meals).Error
	return meals, err
}

func (s *NutritionService) ListMealsByDateRange(ctx context.Context, userID uint, from, to time.Time) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND ate_at >= ? AND ate_at < ?", userID, from, to).
		Order("ate_at ASC").
		Find(&meals).Error
	return meals, err
}

func (s *NutritionService) UpdateMeal(ctx context.Context, userID, mealID uint, in MealInput) (*models.Meal, error) {
	meal, err := s.GetMeal(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}

	meal.Name = in.Name
	if in.Type != "" {
		meal.Type = in.Type
	}
	if !in.AteAt.IsZero() {
		meal.AteAt = in.AteAt
	}
	meal.Calories = in.Calories
	meal.ProteinG = in.ProteinG
	meal.CarbsG = in.CarbsG
	meal.FatG = in.FatG
	meal.FiberG = in.FiberG
	meal.SugarG = in.SugarG
	meal.SodiumMg = in.SodiumMg
	meal.AnalysisSource = "manual"

	if err := s.db.WithContext(ctx).Save(meal).Error; err != nil {
		return nil, err
	}
	return meal, nil
}

func (s *NutritionService) DeleteMeal(ctx context.Context, userID, mealID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", mealID, userID).
		Delete(&models.Meal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("meal not found")
	}
	return nil
}

func userIDPrefix(userID uint) string {
	return fmt.Sprintf("user-%d", userID)
}
