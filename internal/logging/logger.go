// Package logging provides structured logging for notesync using slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Level aliases for convenience.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	defaultLogger *slog.Logger
	defaultOnce   sync.Once
)

// Options configures the logger behavior.
type Options struct {
	// Level sets the minimum log level. Defaults to LevelInfo.
	Level slog.Level
	// Output sets the output destination. Defaults to os.Stderr.
	Output io.Writer
	// JSON enables JSON output format. Defaults to false (text format).
	JSON bool
	// AddSource includes source file and line in log output.
	AddSource bool
}

// DefaultOptions returns options suitable for CLI usage.
func DefaultOptions() Options {
	return Options{
		Level:     LevelInfo,
		Output:    os.Stderr,
		JSON:      false,
		AddSource: false,
	}
}

// New creates a new logger with the given options.
func New(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}

	return slog.New(handler)
}

// Default returns the default logger, creating it if necessary.
// The default logger writes text output to stderr at Info level.
func Default() *slog.Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(DefaultOptions())
	})
	return defaultLogger
}

// SetDefault sets the default logger and also sets it as slog's default.
// This also triggers the sync.Once so Default() won't override the logger.
func SetDefault(logger *slog.Logger) {
	defaultOnce.Do(func() {})
	defaultLogger = logger
	slog.SetDefault(logger)
}

// With returns a logger that includes the given attributes in every output.
func With(args ...any) *slog.Logger {
	return Default().With(args...)
}

// Debug logs at debug level using the default logger.
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

// Info logs at info level using the default logger.
func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

// Warn logs at warn level using the default logger.
func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

// Error logs at error level using the default logger.
func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}

// Common attribute keys for consistent logging across the codebase.
const (
	// KeyNote identifies a note by name or relative path.
	KeyNote = "note"
	// KeyPath identifies a file or vault path.
	KeyPath = "path"
	// KeyStore identifies which content store an operation targets.
	KeyStore = "store"
	// KeyDirection identifies the sync direction of a pass.
	KeyDirection = "direction"
	// KeyStrategy identifies the conflict resolution strategy.
	KeyStrategy = "strategy"
	// KeyOperation identifies the operation being performed.
	KeyOperation = "operation"
	// KeyCount provides a count of items.
	KeyCount = "count"
	// KeyInterval holds a wait or poll duration.
	KeyInterval = "interval"
	// KeyError attaches an error value.
	KeyError = "error"
)

// Note returns a slog attribute for note logging.
func Note(name string) slog.Attr {
	return slog.String(KeyNote, name)
}

// Path returns a slog attribute for path logging.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Store returns a slog attribute identifying a content store.
func Store(name string) slog.Attr {
	return slog.String(KeyStore, name)
}

// Direction returns a slog attribute for the sync direction.
func Direction(d string) slog.Attr {
	return slog.String(KeyDirection, d)
}

// Strategy returns a slog attribute for the conflict strategy.
func Strategy(s string) slog.Attr {
	return slog.String(KeyStrategy, s)
}

// Operation returns a slog attribute for operation logging.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Count returns a slog attribute for item counts.
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Interval returns a slog attribute for wait durations.
func Interval(d time.Duration) slog.Attr {
	return slog.Duration(KeyInterval, d)
}

// Err returns a slog attribute for error logging.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyError, err)
}
