package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/neo-astro/tiktok-sentiment-backend/internal/db"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/handlers"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/logger"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/middleware"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/repos"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/server"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/services"
	"github.com/neo-astro/tiktok-sentiment-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	port := utils.RequireEnv("PORT", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	videoRepo := repos.NewVideoRepo(thePG, log)
	eventRepo := repos.NewAnalysisEventRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	apifyClient, err := services.NewApifyClient(log)
	if err != nil {
		log.Error("Could not init ApifyClient", "error", err)
		os.Exit(1)
	}
	commentFetcher := services.NewCommentFetcher(log, apifyClient)
	analyzerClient := services.NewAnalyzerClient(log)
	analysisService := services.NewAnalysisService(thePG, log, userRepo, videoRepo, eventRepo)
	orchestratorService := services.NewOrchestrator(log, commentFetcher, analyzerClient, analysisService)

	// Handlers
	log.Info("Setting up handlers from main...")
	commentsHandler := handlers.NewCommentsHandler(log, commentFetcher)
	analysisHandler := handlers.NewAnalysisHandler(log, analysisService, orchestratorService)

	// Middleware
	requestLogger := middleware.NewRequestLogger(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		RequestLogger:   requestLogger,
		CommentsHandler: commentsHandler,
		AnalysisHandler: analysisHandler,
	})

	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
