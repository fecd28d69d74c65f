package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	DBPath     string     // generation-history database
	ConfigFile string     // explicit universalpwa.yaml path, "" = look in project root
	LogLevel   slog.Level // slog level
}

// defaultDataPath returns ~/.universalpwa/<filename>, falling back to
// a CWD-relative path if the home directory can't be resolved.
func defaultDataPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filename
	}
	return filepath.Join(home, ".universalpwa", filename)
}

func loadConfig() (*Config, error) {
	cfg := &Config{
		DBPath:     envOr("UNIVERSALPWA_DB", defaultDataPath("history.db")),
		ConfigFile: envOr("UNIVERSALPWA_CONFIG", ""),
		LogLevel:   parseLogLevel(envOr("UNIVERSALPWA_LOG_LEVEL", "info")),
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// discardLogger silences structured logging for read-only subcommands
// that print their own report.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
