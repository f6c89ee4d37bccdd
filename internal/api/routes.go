package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/praxisgrid/veritas/internal/config"
	"github.com/praxisgrid/veritas/internal/engine"
)

func SetupRoutes(cfg *config.Config, detector *engine.Detector, batch *engine.BatchRunner) *gin.Engine {
	router := gin.Default()

	// Create handler
	handler := NewHandler(cfg, detector, batch)

	// Create rate limiter
	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(RequestIDMiddleware())
	router.Use(ErrorHandlerMiddleware())
	router.Use(MetricsMiddleware())

	// Health and discovery endpoints (no auth)
	router.GET("/health", handler.Health)
	router.GET("/api/v1/languages", handler.Languages)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/compare", handler.Compare)
		api.POST("/compare/batch", handler.BatchCompare)
	}

	return router
}
