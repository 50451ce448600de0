package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with application-specific methods
type Logger struct {
	zerolog.Logger
}

// New creates a new Logger instance. Output goes to stderr so that
// rendered previews on stdout stay pipeable.
func New(level string, format string) *Logger {
	// Set global log level
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var logger zerolog.Logger

	if format == "text" || format == "console" {
		// Human-readable output for interactive runs
		output := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		// JSON output for CI pipelines
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	return &Logger{Logger: logger}
}

// WithComponent returns a new logger with the component name attached
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.With().Str("component", component).Logger(),
	}
}

// WithDeploy returns a new logger with the deploy identifiers attached
func (l *Logger) WithDeploy(application, stage string) *Logger {
	ctx := l.With().Str("application", application)
	if stage != "" {
		ctx = ctx.Str("stage", stage)
	}
	return &Logger{Logger: ctx.Logger()}
}

// Nop returns a logger that discards everything. Used by tests and as a
// default when callers pass no logger.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}
