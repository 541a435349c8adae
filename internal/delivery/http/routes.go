package http

import (
	"github.com/gin-gonic/gin"
	"github.com/mealsnap/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(IdentityMiddleware(cfg.Identity.JWTSecret))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handler.CreateSession)
			sessions.GET("/:sessionId", handler.GetSession)
			sessions.POST("/:sessionId/analyze", handler.AnalyzeText)
			sessions.POST("/:sessionId/analyze-image", handler.AnalyzeImage)
			sessions.POST("/:sessionId/items", handler.AddItem)
			sessions.DELETE("/:sessionId/items/:itemId", handler.RemoveItem)
			sessions.POST("/:sessionId/confirm", handler.Confirm)
			sessions.POST("/:sessionId/reset", handler.Reset)
		}

		v1.GET("/history", handler.History)
		v1.GET("/identity/anonymous", handler.AnonymousIdentity)
	}

	return router
}
