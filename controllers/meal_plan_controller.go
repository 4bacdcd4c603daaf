package controllers

import (
	"net/http"
	"time"

	"backend/services"

	"github.com/gin-gonic/gin"
)

type MealPlanController struct {
	Svc   *services.MealPlanService
	Quota *services.AIQuotaLimiter
}

func NewMealPlanController(svc *services.MealPlanService, quota *services.AIQuotaLimiter) *MealPlanController {
	return &MealPlanController{Svc: svc, Quota: quota}
}

// takeQuota charges one AI generation against the caller's tier. On denial
// it writes the 429 itself and returns false.
func (pc *MealPlanController) takeQuota(c *gin.Context, userID uint) bool {
	user, err := services.FindUserByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return false
	}

	res, err := pc.Quota.Allow(c.Request.Context(), userID, user.SubscriptionTier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check generation quota"})
		return false
	}
	if !res.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     pc.Quota.LimitMessage(res),
			"limit":     res.Limit,
			"remaining": res.Remaining,
			"reset_at":  res.ResetAt,
		})
		return false
	}
	return true
}

func (pc *MealPlanController) Create(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}

	var cfg services.PlanConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !pc.takeQuota(c, userID) {
		return
	}

	plan, report, err := pc.Svc.CreateUserMealPlan(c.Request.Context(), userID, cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create meal plan"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"plan": plan, "report": report})
}

func (pc *MealPlanController) GetCurrent(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}

	view, err := pc.Svc.GetUserMealPlan(c.Request.Context(), userID, 0)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (pc *MealPlanController) GetByID(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := pc.Svc.GetUserMealPlan(c.Request.Context(), userID, planID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (pc *MealPlanController) ReplaceMeal(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ReplaceMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !pc.takeQuota(c, userID) {
		return
	}

	view, source, err := pc.Svc.ReplaceMealInPlan(c.Request.Context(), userID, planID, req)
	if err != nil {
		switch err.Error() {
		case "meal plan not found", "meal not found in plan":
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace meal"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"meal": view, "source": source})
}

func (pc *MealPlanController) ShoppingList(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	planID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input struct {
		WeekStartDate string `json:"week_start_date"`
	}
	_ = c.ShouldBindJSON(&input) // optional body, defaults to now

	weekStart := time.Now()
	if input.WeekStartDate != "" {
		t, err := time.Parse("2006-01-02", input.WeekStartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "week_start_date must be formatted as YYYY-MM-DD"})
			return
		}
		weekStart = t
	}

	list, grouped, err := pc.Svc.GenerateShoppingList(c.Request.Context(), userID, planID, weekStart)
	if err != nil {
		if err.Error() == "meal plan not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate shopping list"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reference":            list.Reference,
		"week_start":           list.WeekStartDate,
		"items_by_category":    grouped,
		"total_estimated_cost": list.TotalEstimatedCost,
	})
}

type preferenceInput struct {
	TemplateID uint   `json:"template_id" binding:"required"`
	Type       string `json:"type" binding:"required,oneof=favorite dislike rating"`
	Rating     int    `json:"rating" binding:"min=0,max=5"`
	Notes      string `json:"notes"`
}

func (pc *MealPlanController) SavePreference(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}

	var input preferenceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pref, err := pc.Svc.UpsertMealPreference(c.Request.Context(), userID, input.TemplateID, input.Type, input.Rating, input.Notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preference"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preference": pref})
}
