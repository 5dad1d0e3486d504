// Package log provides the structured, leveled logger used across the service.
// The call shape (Error/Warn/Info/Debug(ctx, msg, kv...)) mirrors what every
// service package in this module expects from its logging dependency.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Level is the minimum severity that will be emitted.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects the slog handler used to render records.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	Config(LevelInfo, FormatText, os.Stderr)
}

// Config (re)configures the package-level logger. Safe to call once at
// startup, and again in tests that need a captured writer.
func Config(level Level, format Format, w io.Writer) {
	var lvl slog.Level
	switch level {
	case LevelDebug:
		lvl = slog.LevelDebug
	case LevelWarn:
		lvl = slog.LevelWarn
	case LevelError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger.Store(slog.New(handler))
}

func current() *slog.Logger {
	l := logger.Load()
	if l == nil {
		return slog.Default()
	}
	return l
}

// Debug logs at debug level with key/value pairs.
func Debug(ctx context.Context, msg string, args ...any) {
	current().DebugContext(ctx, msg, args...)
}

// Info logs at info level with key/value pairs.
func Info(ctx context.Context, msg string, args ...any) {
	current().InfoContext(ctx, msg, args...)
}

// Warn logs at warn level with key/value pairs.
func Warn(ctx context.Context, msg string, args ...any) {
	current().WarnContext(ctx, msg, args...)
}

// Error logs at error level with key/value pairs. Conventionally the first
// pair is "err", <error>.
func Error(ctx context.Context, msg string, args ...any) {
	current().ErrorContext(ctx, msg, args...)
}
