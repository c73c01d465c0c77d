package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/handlers"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/middleware"
)

type RouterConfig struct {
	RequestLogger   *middleware.RequestLogger
	CommentsHandler *handlers.CommentsHandler
	AnalysisHandler *handlers.AnalysisHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.RequestLogger != nil {
		router.Use(cfg.RequestLogger.Log())
	}

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/tiktok-comments", cfg.CommentsHandler.TikTokComments)
		api.POST("/datos", cfg.AnalysisHandler.CrearDatos)
		api.GET("/datos/:userId", cfg.AnalysisHandler.ListarDatos)
		api.GET("/analisisResult/:id", cfg.AnalysisHandler.ObtenerResultado)
		api.POST("/analisis", cfg.AnalysisHandler.RunAnalisis)
	}

	return router
}
