package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a thin wrapper around slog.Logger that adds field helpers
type Logger struct {
	*slog.Logger
}

// NewLogger creates a logger writing to stdout.
// Development uses a human readable text handler, production emits JSON.
func NewLogger(isDevelopment bool) *Logger {
	return NewLoggerWithLevel(isDevelopment, "info")
}

// NewLoggerWithLevel creates a stdout logger filtered at the given level name
func NewLoggerWithLevel(isDevelopment bool, level string) *Logger {
	return New(os.Stdout, isDevelopment, level)
}

// New creates a logger writing to w
func New(w io.Writer, isDevelopment bool, level string) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if isDevelopment {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithFields returns a child logger that always includes the given fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.Logger.With(args...)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
