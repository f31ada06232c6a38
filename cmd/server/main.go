// Fraud detection system - real-time ensemble transaction scoring
package main

import (
	"context"
	"os"

	"github.com/GajendraSingh33/fraud-detection-system/internal/config"
	"github.com/GajendraSingh33/fraud-detection-system/internal/logging"
	"github.com/GajendraSingh33/fraud-detection-system/internal/server"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Create logger
	logger := logging.New("info", "text")

	logger.Info("starting fraud detection system",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"env", cfg.Env,
		"feed_enabled", cfg.FeedEnabled,
		"training_samples", cfg.TrainingSamples,
	)

	// Create and run server
	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
