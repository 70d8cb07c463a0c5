// Command settingsctl inspects and edits the energy settings of an app data
// directory pulled from a device, and dry-runs the warning dialogs.
package main

import (
	"log/slog"
	"os"

	"github.com/caarlos0/env/v10"
)

// Config holds all settingsctl configuration.
type Config struct {
	// DataDir is the app data directory (the one holding files/ and shared_prefs/)
	DataDir string `env:"SETTINGS_DATA_DIR" envDefault:"."`

	// Backend selects the record storage (file, sqlite)
	Backend string `env:"SETTINGS_BACKEND" envDefault:"file"`

	// LogLevel is the log level (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogFormat is the log format (json, text)
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// MetricsTextfile receives a Prometheus text dump after each command if set
	MetricsTextfile string `env:"METRICS_TEXTFILE"`
}

func main() {
	// Load configuration from environment
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("failed to parse config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := newRootCommand(cfg, logger).Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger creates a logger based on configuration.
// Logs go to stderr, command output to stdout.
func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
