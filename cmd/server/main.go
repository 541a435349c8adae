package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/mealsnap/backend/config"
	httpDelivery "github.com/mealsnap/backend/internal/delivery/http"
	"github.com/mealsnap/backend/internal/infrastructure/localstore"
	"github.com/mealsnap/backend/internal/infrastructure/openrouter"
	"github.com/mealsnap/backend/internal/infrastructure/sqlite"
	"github.com/mealsnap/backend/internal/usecase"
	"github.com/mealsnap/backend/pkg/logging"
)

func main() {
	logging.Setup()

	// Load .env before viper reads the environment; missing file is fine
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded environment from .env")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("starting MealSnap backend v1.0.0",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port)

	// Initialize infrastructure dependencies
	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		slog.Error("failed to open meal log store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("meal log store ready", "path", cfg.Storage.DBPath)

	local, err := localstore.Open(cfg.Identity.LocalStorePath)
	if err != nil {
		slog.Error("failed to open local store", "error", err)
		os.Exit(1)
	}

	client := openrouter.NewClient(openrouter.Config{
		BaseURL:     cfg.Analysis.BaseURL,
		Model:       cfg.Analysis.Model,
		ProModel:    cfg.Analysis.ProModel,
		RatePerHour: cfg.Analysis.RatePerHour,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		client.SetDebug(true)
		slog.Info("analysis client debug mode enabled")
	}

	if cfg.Analysis.APIKey != "" || cfg.Analysis.BrokeredKey != "" {
		slog.Info("analysis endpoint configured", "base_url", cfg.Analysis.BaseURL, "model", cfg.Analysis.Model)
	} else {
		slog.Warn("no analysis API key configured: image analysis will fall back to sample data",
			"base_url", cfg.Analysis.BaseURL)
	}

	// Initialize usecase layer
	identity := usecase.NewIdentityService(local)
	analyzer := usecase.NewAnalyzerService(client, usecase.AnalyzerConfig{
		APIKey:      cfg.Analysis.APIKey,
		BrokeredKey: cfg.Analysis.BrokeredKey,
	})
	nutrition := usecase.NewNutritionService()
	mealLogger := usecase.NewMealLogger(store, identity)
	history := usecase.NewHistoryService(store)

	sessions := usecase.NewSessionManager(cfg.Session.TTL, func() *usecase.Flow {
		return usecase.NewFlow(analyzer, nutrition, mealLogger, usecase.FlowConfig{
			AnalysisTimeout: cfg.Analysis.Timeout,
		})
	})
	slog.Info("session registry ready", "ttl", cfg.Session.TTL)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(sessions, history, identity)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	slog.Info("server listening", "addr", addr)

	if err := router.Run(addr); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
