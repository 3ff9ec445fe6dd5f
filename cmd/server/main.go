package main

import (
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/router"
	"github.com/Qwitter/Qwitter-Backend-sub000/pkg/config"
	"github.com/Qwitter/Qwitter-Backend-sub000/pkg/logger"
	"github.com/Qwitter/Qwitter-Backend-sub000/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logging
	logger.Init(cfg.Env)
	defer zap.L().Sync() //nolint:errcheck

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		zap.S().Fatalw("failed to initialize databases", "error", err)
	}
	defer db.CloseDB()

	// Metrics endpoint on its own port
	go func() {
		if err := metrics.Serve(cfg.MetricsPort); err != nil {
			zap.S().Warnw("metrics server stopped", "error", err)
		}
	}()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo, db.Redis)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
