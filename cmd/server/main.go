package main

import (
	"log/slog"
	"os"
	"strings"

	"task-manager-api/internal/app"
	"task-manager-api/internal/logger"
)

func main() {
	// The logger has to exist before config loading so startup failures
	// are reported through it.
	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}
	slog.SetDefault(slog.New(logger.New(env, os.Stdout, slog.LevelInfo)))

	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
