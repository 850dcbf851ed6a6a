package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func attachRoutes(r *gin.Engine, deps Deps) {
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	alertsH := NewAlerts(deps.Store)
	intakeH := NewIntake(deps.Processor, deps.Store, deps.Logger)
	assistH := NewAssist(deps.Provider, deps.Logger)

	r.GET("/healthz", Health(deps))

	api := r.Group("/api")
	{
		api.GET("/alerts", alertsH.List)

		submit := api.Group("")
		if deps.Limiter != nil {
			submit.Use(RateLimitMiddleware(deps.Limiter))
		}
		submit.POST("/submit_claim", intakeH.Submit)

		api.POST("/ai/text", assistH.Text)
		api.POST("/ai/image", assistH.Image)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
