package strtab

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with strtab-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithTable adds a table name field to the logger.
func (l *Logger) WithTable(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", name),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogFinalize logs the outcome of Builder.Finalize.
func (l *Logger) LogFinalize(strings, bufferBytes int, offsetWidth, lengthWidth Width, err error) {
	if err != nil {
		l.Error("finalize failed",
			"strings", strings,
			"buffer_bytes", bufferBytes,
			"error", err,
		)
		return
	}
	l.Debug("finalize completed",
		"strings", strings,
		"buffer_bytes", bufferBytes,
		"offset_width", offsetWidth.String(),
		"length_width", lengthWidth.String(),
	)
}

// LogLoad logs a table load from source (a path, blob name or "bytes").
func (l *Logger) LogLoad(source string, strings int, err error) {
	if err != nil {
		l.Error("load failed",
			"source", source,
			"error", err,
		)
		return
	}
	l.Debug("load completed",
		"source", source,
		"strings", strings,
	)
}

// LogPersist logs a blob write.
func (l *Logger) LogPersist(ctx context.Context, name string, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "persist failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "table persisted",
		"name", name,
		"bytes", bytes,
	)
}

// LogCommit logs a CURRENT pointer update.
func (l *Logger) LogCommit(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "commit failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "commit completed",
		"name", name,
	)
}
