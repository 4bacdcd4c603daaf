package services

import (
	"errors"
	"time"

	"backend/config"
	"backend/models"
	"backend/utils"

	"gorm.io/gorm"
)

type ProfileInput struct {
	FullName string  `json:"full_name"`
	Birthday string  `json:"birthday"` // YYYY-MM-DD
	Sex      string  `json:"sex"`
	HeightCm float64 `json:"height_cm"`
	WeightKg float64 `json:"weight_kg"`
}

func GetUserProfile(userID uint) (map[string]interface{}, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return nil, errors.New("user not found")
	}

	age := 0
	if !user.Birthday.IsZero() {
		age = utils.CalculateAge(user.Birthday)
	}

	profile := map[string]interface{}{
		"id":                user.ID,
		"email":             user.Email,
		"full_name":         user.FullName,
		"age":               age,
		"sex":               user.Sex,
		"height_cm":         user.HeightCm,
		"weight_kg":         user.WeightKg,
		"subscription_tier": user.SubscriptionTier,
	}
	if !user.Birthday.IsZero() {
		profile["birthday"] = user.Birthday.Format("2006-01-02")
	}
	if bmi, err := utils.CalculateBMI(user.HeightCm, user.WeightKg); err == nil {
		profile["bmi"] = bmi
	}
	return profile, nil
}

func UpdateUserProfile(userID uint, input ProfileInput) error {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return errors.New("user not found")
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Birthday != "" {
		if birthday, err := time.Parse("2006-01-02", input.Birthday); err == nil {
			user.Birthday = birthday
		}
	}
	if input.Sex != "" {
		user.Sex = input.Sex
	}
	if input.HeightCm > 0 {
		user.HeightCm = input.HeightCm
	}
	if input.WeightKg > 0 {
		user.WeightKg = input.WeightKg
	}

	return config.DB.Save(&user).Error
}

type GoalInput struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	SodiumMg float64 `json:"sodium_mg"`
}

// UpsertGoals writes the user's daily targets. A zero calorie target is
// seeded from the profile-based estimate so downstream percent math always
// has a denominator.
func UpsertGoals(userID uint, in GoalInput) (*models.NutritionGoal, error) {
	if in.Calories <= 0 {
		var user models.User
		if err := config.DB.First(&user, userID).Error; err == nil {
			age := 0
			if !user.Birthday.IsZero() {
				age = utils.CalculateAge(user.Birthday)
			}
			in.Calories = utils.EstimateDailyCalories(user.Sex, age, user.HeightCm, user.WeightKg)
		} else {
			in.Calories = utils.DefaultCalories
		}
	}

	var goal models.NutritionGoal
	err := config.DB.Where("user_id = ?", userID).Order("updated_at DESC").First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		goal = models.NutritionGoal{UserID: userID}
		err = nil
	}
	if err != nil {
		return nil, err
	}

	goal.Calories = in.Calories
	goal.ProteinG = in.ProteinG
	goal.CarbsG = in.CarbsG
	goal.FatG = in.FatG
	goal.FiberG = in.FiberG
	goal.SodiumMg = in.SodiumMg

	if goal.ID == 0 {
		if err := config.DB.Create(&goal).Error; err != nil {
			return nil, err
		}
		return &goal, nil
	}
	if err := config.DB.Save(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

type QuestionnaireInput struct {
	DietaryPreferences []string `json:"dietary_preferences"`
	Allergies          []string `json:"allergies"`
	CookingSkill       string   `json:"cooking_skill"`
}

// SubmitQuestionnaire stores a completed questionnaire. History is kept;
// plan generation reads the most recent completed row.
func SubmitQuestionnaire(userID uint, in QuestionnaireInput) (*models.Questionnaire, error) {
	now := time.Now()
	q := models.Questionnaire{
		UserID:             userID,
		DietaryPreferences: joinList(in.DietaryPreferences),
		Allergies:          joinList(in.Allergies),
		CookingSkill:       in.CookingSkill,
		CompletedAt:        &now,
	}
	if err := config.DB.Create(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}
