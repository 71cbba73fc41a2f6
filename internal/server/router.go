package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sgacademico/etl-backend/internal/handlers"
)

type RouterConfig struct {
	ETLHandler *handlers.ETLHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	etl := router.Group("/etl")
	{
		etl.GET("/runs", cfg.ETLHandler.ListRuns)
		etl.POST("/run/:proceso", cfg.ETLHandler.TriggerRun)
	}

	return router
}
