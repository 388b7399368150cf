package http

import (
	"github.com/gin-gonic/gin"
	"github.com/linkscribe/backend/config"
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

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		keywords := v1.Group("/keywords")
		{
			keywords.GET("", handler.ListKeywords)
			keywords.POST("", handler.AddKeyword)
			keywords.POST("/import", handler.ImportKeywords)
			keywords.DELETE("/:id", handler.DeleteKeyword)
		}

		v1.GET("/settings", handler.GetSettings)
	}

	return router
}
