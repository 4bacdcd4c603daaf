package main

import (
	"log"

	"backend/config"
	"backend/controllers"
	"backend/routes"
	"backend/services"
	"backend/utils"
)

func main() {
	config.InitDB()
	config.InitRedis()
	utils.InitS3()

	ai := services.NewOpenAIService()

	var store services.QuotaStore
	if config.Redis != nil {
		store = services.NewRedisQuotaStore(config.Redis)
	} else {
		log.Println("redis not configured, using in-memory generation quotas")
		store = services.NewMemoryQuotaStore()
	}
	quota := services.NewAIQuotaLimiter(store)

	hub := services.NewRealtimeHub()
	push, err := services.NewPushService(config.DB)
	if err != nil {
		log.Printf("push disabled: %v", err)
	}
	events := services.NewEventBus(hub, push)

	rek, err := services.NewRekognitionService()
	if err != nil {
		log.Printf("label detection disabled: %v", err)
	}

	plans := services.NewMealPlanService(config.DB, ai, events)
	nutrition := services.NewNutritionService(config.DB, ai, rek)

	r := routes.SetupRouter(routes.Controllers{
		Meals:      controllers.NewMealController(nutrition),
		Plans:      controllers.NewMealPlanController(plans, quota),
		Calendar:   controllers.NewCalendarController(services.NewCalendarService(config.DB)),
		Statistics: controllers.NewStatisticsController(services.NewStatisticsService(config.DB)),
		Devices:    controllers.NewDeviceController(push),
		Realtime:   controllers.NewRealtimeController(hub),
	})
	r.Run(":8080")
}
