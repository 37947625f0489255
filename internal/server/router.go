package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Corsox-Tech/pathlight-backend/internal/handlers"
)

type RouterConfig struct {
	AllowOrigins        []string
	AvailabilityHandler *handlers.AvailabilityHandler
	RollupHandler       *handlers.RollupHandler
	StateHandler        *handlers.StateHandler
	OverrideHandler     *handlers.OverrideHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		enrollments := api.Group("/enrollments/:id")
		enrollments.GET("/rollup", cfg.RollupHandler.GetRollup)
		enrollments.POST("/rollup/recompute", cfg.RollupHandler.RequestRecompute)

		activities := enrollments.Group("/activities/:activityID")
		activities.GET("/availability", cfg.AvailabilityHandler.ComputeAvailability)
		activities.GET("/state", cfg.StateHandler.GetState)
		activities.PUT("/state", cfg.StateHandler.RecordState)
		activities.GET("/overrides", cfg.OverrideHandler.ListOverrides)
		activities.POST("/overrides", cfg.OverrideHandler.ApplyOverride)
	}

	return router
}
