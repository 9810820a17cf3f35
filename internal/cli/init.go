// Package cli provides common CLI initialization utilities and the
// interactive expense wizard. The initialization helpers consolidate the
// patterns shared by cmd/tagtrack and cmd/tagtrack-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"tagtrack/internal/config"
	"tagtrack/internal/storage"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitArchive initializes the SQLite session archive with the given path.
// Returns the archive or exits the process on failure.
func InitArchive(logger *slog.Logger, dbPath string) *storage.SessionArchive {
	archive, err := storage.NewSessionArchive(dbPath)
	if err != nil {
		logger.Error("Failed to initialize session archive", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return archive
}
