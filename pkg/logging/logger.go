// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var output io.Writer = cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache operations (hit/miss, key, TTL)
//   - Individual upstream fetches (endpoint, status)
//   - Derivation fallbacks (unparseable generation names, missing sprites)
//
// Info: Normal operation events
//   - Refresh runs started/completed with entry counts
//   - Batch progress during full-corpus builds
//   - Cache population on startup
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Skipped identifiers during a collection build
//   - Degraded optional sub-fetches (evolution chain, generation detail)
//   - Cache write failures (fallback to recompute-per-request)
//   - Retry attempts against the upstream API
//
// Error: Error conditions requiring attention
//   - Aggregation failures on required fetches (after retries)
//   - Total build failures (zero successful entities)
//   - Corrupt cache entries discarded on read
//   - Configuration errors
//
// Context Fields:
//   - endpoint: upstream API path
//   - identifier: Pokémon ID or name being aggregated
//   - artifact: cache artifact name (summary, detail, generations, types)
//   - status_code: upstream HTTP status
//   - error_class: error classification (not_found, client, server, rate_limit, network)
//   - cache_key: cache key involved in the operation
//   - ttl: cache entry TTL
