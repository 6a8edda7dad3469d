// Package logging provides the process-wide zerolog logger and the
// contextual child loggers each coordinator attaches to a command as it
// moves through the dispatch pipeline.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global, process-wide logger. Init must be called once at
// startup before any coordinator begins handling work.
var Logger zerolog.Logger

// Level is a coarse logging verbosity, set via configuration.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config controls how Init builds the global logger.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init builds the global logger from cfg. Console output is human-readable;
// JSON output is for production log aggregation.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
		return
	}
	Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// WithComponent creates a child logger tagged with the coordinator it
// belongs to ("aggregate", "projector", "saga", "pm", "query", "bus").
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithAggregate creates a child logger scoped to one aggregate instance.
func WithAggregate(domain, rootHex, correlationID string) zerolog.Logger {
	return Logger.With().
		Str("domain", domain).
		Str("root", rootHex).
		Str("correlation_id", correlationID).
		Logger()
}
