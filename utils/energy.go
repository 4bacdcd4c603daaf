package utils

import (
	"errors"
	"time"
)

// Documented fallback targets used whenever a user has no stored
// nutrition goal.
const (
	DefaultCalories = 2000
	DefaultProteinG = 150
	DefaultCarbsG   = 250
	DefaultFatG     = 67
)

func CalculateAge(birthday time.Time) int {
	now := time.Now()
	age := now.Year() - birthday.Year()
	if now.YearDay() < birthday.YearDay() {
		age--
	}
	return age
}

// CalculateBMI expects height in centimeters and weight in kilograms.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, errors.New("height and weight must be positive")
	}
	// Sanity checks to avoid garbage input
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, errors.New("height/weight out of plausible range")
	}

	h := heightCm / 100.0 // to meters
	return weightKg / (h * h), nil
}

// EstimateDailyCalories is a Mifflin-St Jeor estimate with a sedentary
// activity factor, used to seed prompts when profile data exists but no
// explicit goal does. Returns DefaultCalories when inputs are unusable.
func EstimateDailyCalories(sex string, age int, heightCm, weightKg float64) float64 {
	if age <= 0 || heightCm <= 0 || weightKg <= 0 {
		return DefaultCalories
	}
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if sex == "female" {
		bmr -= 161
	} else {
		bmr += 5
	}
	return bmr * 1.3
}
