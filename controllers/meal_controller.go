package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	Svc *services.NutritionService
}

func NewMealController(svc *services.NutritionService) *MealController {
	return &MealController{Svc: svc}
}

type photoLogInput struct {
	Image string `json:"image" binding:"required"` // base64, data URI accepted
	Type  string `json:"type"`
	AteAt string `json:"ate_at"` // RFC 3339, defaults to now
}

func (mc *MealController) LogFromPhoto(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}

	var input photoLogInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ateAt := time.Now()
	if input.AteAt != "" {
		t, err := time.Parse(time.RFC3339, input.AteAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ate_at must be RFC 3339"})
			return
		}
		ateAt = t
	}

	meal, err := mc.Svc.LogMealFromPhoto(c.Request.Context(), userID, input.Type, ateAt, input.Image)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log meal from photo"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"meal": meal})
}

func (mc *MealController) Create(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}

	var input services.MealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := mc.Svc.AddMeal(c.Request.Context(), userID, input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save meal"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"meal": meal})
}

func (mc *MealController) List(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}

	from, to, hasRange, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var meals interface{}
	if hasRange {
		meals, err = mc.Svc.ListMealsByDateRange(c.Request.Context(), userID, from, to)
	} else {
		meals, err = mc.Svc.ListMeals(c.Request.Context(), userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

func (mc *MealController) Get(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	mealID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	meal, err := mc.Svc.GetMeal(c.Request.Context(), userID, mealID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

func (mc *MealController) Update(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	mealID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input services.MealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := mc.Svc.UpdateMeal(c.Request.Context(), userID, mealID, input)
	if err != nil {
		if err.Error() == "meal not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update meal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

func (mc *MealController) Delete(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	mealID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := mc.Svc.DeleteMeal(c.Request.Context(), userID, mealID); err != nil {
		if err.Error() == "meal not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete meal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal deleted"})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func parseDateRange(c *gin.Context) (from, to time.Time, ok bool, err error) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" && toStr == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	from, err = time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, false, errors.New("from must be formatted as YYYY-MM-DD")
	}
	to, err = time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, false, errors.New("to must be formatted as YYYY-MM-DD")
	}
	// end of range is exclusive
	return from, to.AddDate(0, 0, 1), true, nil
}
