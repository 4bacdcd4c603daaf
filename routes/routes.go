package routes

import (
	"backend/controllers"
	"backend/middlewares"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Meals      *controllers.MealController
	Plans      *controllers.MealPlanController
	Calendar   *controllers.CalendarController
	Statistics *controllers.StatisticsController
	Devices    *controllers.DeviceController
	Realtime   *controllers.RealtimeController
}

func SetupRouter(cs Controllers) *gin.Engine {
	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/forgot-password", controllers.ForgotPassword)
		auth.POST("/reset-password", controllers.ResetPassword)
		auth.POST("/logout", middlewares.AuthMiddleware(), controllers.Logout)
	}

	// Protected user routes
	user := r.Group("/user")
	user.Use(middlewares.AuthMiddleware())
	{
		user.GET("/profile", controllers.GetProfile)
		user.PUT("/profile", controllers.UpdateProfile)
		user.PUT("/goals", controllers.UpdateGoals)
		user.POST("/questionnaire", controllers.SubmitQuestionnaire)
	}

	// Protected API routes
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.POST("/meals/photo", cs.Meals.LogFromPhoto)
		api.POST("/meals", cs.Meals.Create)
		api.GET("/meals", cs.Meals.List)
		api.GET("/meals/:id", cs.Meals.Get)
		api.PUT("/meals/:id", cs.Meals.Update)
		api.DELETE("/meals/:id", cs.Meals.Delete)

		api.POST("/meal-plans/create", cs.Plans.Create)
		api.GET("/meal-plans/current", cs.Plans.GetCurrent)
		api.GET("/meal-plans/:id", cs.Plans.GetByID)
		api.PUT("/meal-plans/:id/replace", cs.Plans.ReplaceMeal)
		api.POST("/meal-plans/:id/shopping-list", cs.Plans.ShoppingList)
		api.POST("/meal-plans/preferences", cs.Plans.SavePreference)

		api.GET("/calendar/:year/:month", cs.Calendar.Month)
		api.GET("/statistics", cs.Statistics.Summary)

		api.POST("/devices/register", cs.Devices.Register)
		api.GET("/ws/events", cs.Realtime.EventsWS)
	}

	return r
}
