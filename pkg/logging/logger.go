// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"fmt"
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

// levels maps accepted level names to their canonical name and zerolog level.
var levels = map[string]struct {
	name  LogLevel
	level zerolog.Level
}{
	"debug":   {LevelDebug, zerolog.DebugLevel},
	"info":    {LevelInfo, zerolog.InfoLevel},
	"":        {LevelInfo, zerolog.InfoLevel},
	"warn":    {LevelWarn, zerolog.WarnLevel},
	"warning": {LevelWarn, zerolog.WarnLevel},
	"error":   {LevelError, zerolog.ErrorLevel},
}

func lookupLevel(s string) (LogLevel, zerolog.Level, bool) {
	l, ok := levels[strings.ToLower(strings.TrimSpace(s))]
	return l.name, l.level, ok
}

// Setup configures the global zerolog logger. An unknown level logs at info;
// use ParseLevel to reject it up front.
func Setup(cfg Config) zerolog.Logger {
	// Set global log level
	_, level, ok := lookupLevel(string(cfg.Level))
	if !ok {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output
	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	// Create logger with timestamp
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// ParseLevel validates a configured level name. Empty means info.
func ParseLevel(s string) (LogLevel, error) {
	name, _, ok := lookupLevel(s)
	if !ok {
		return "", fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
	return name, nil
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Each page request (url, page, record count)
//   - Pagination derived from the first page
//   - Transport failures before retry
//
// Info: Normal operation events
//   - Fetch complete (pages, records, duration)
//   - Contract search complete
//   - Request succeeded after retry
//
// Warn: Warning conditions that don't prevent operation
//   - Retry attempts and exhausted retries
//   - Query dropped from a contract search
//   - Fetch failed, pages discarded
//
// Error: Error conditions requiring attention
//   - CLI command failures
//   - Configuration errors
//
// Context Fields:
//   - component: fpds-client, fpds-fetcher, fpds-cli
//   - fetch_id: UUID of one single-query fetch
//   - url: request URL
//   - page: 1-based page number
//   - contract_id: PIID of a contract search query
//   - error_kind: validation, request, network, parse
//   - attempt, backoff: retry state
