// Package config reads banksim's runtime defaults from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Environment variables.
const (
	EnvTraceDB  = "BANKSIM_TRACE_DB"
	EnvLogLevel = "BANKSIM_LOG_LEVEL"
	EnvNoColor  = "NO_COLOR"
)

// Config holds defaults for the CLI. Flags override these.
type Config struct {
	// TraceDB is the sqlite trace store path. Empty disables recording.
	TraceDB string

	// LogLevel is the minimum level of the stderr logger.
	LogLevel slog.Level

	// NoColor disables colored log output.
	NoColor bool
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	cfg := Config{
		LogLevel: slog.LevelWarn,
	}

	if path := strings.TrimSpace(os.Getenv(EnvTraceDB)); path != "" {
		cfg.TraceDB = path
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		parsed, err := ParseLogLevel(level)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = parsed
	}

	// https://no-color.org: any non-empty value disables color.
	cfg.NoColor = os.Getenv(EnvNoColor) != ""

	return cfg, nil
}

// ParseLogLevel parses debug, info, warn (or warning) and error, ignoring
// case and surrounding space.
func ParseLogLevel(input string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf(
			"parse %s: unsupported value %q (allowed: %q, %q, %q, %q)",
			EnvLogLevel,
			input,
			slog.LevelDebug.String(),
			slog.LevelInfo.String(),
			slog.LevelWarn.String(),
			slog.LevelError.String(),
		)
	}
}
