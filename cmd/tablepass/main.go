package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/nightowl-club/tablepass/docs"
	"github.com/nightowl-club/tablepass/internal/app"
	"github.com/nightowl-club/tablepass/internal/config"
)

// @title TablePass API
// @version 1.0
// @description Table booking, party guest lists and door check-in for nightlife events.
// @host localhost:8080
// @BasePath /
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		logger.Error("application finished with error", "error", err)
	}
}
