package tinyvec

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with tinyvec-specific operation helpers.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to stderr.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(ctx context.Context, index, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"dimension", dimension,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "add completed",
		"index", index,
		"dimension", dimension,
	)
}

// LogSearch logs a nearest-neighbor scan.
func (l *Logger) LogSearch(ctx context.Context, candidates int, m Match, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"candidates", candidates,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "search completed",
		"candidates", candidates,
		"index", m.Index,
		"score", m.Score,
	)
}

// LogWrite logs a persistence write.
func (l *Logger) LogWrite(ctx context.Context, target string, vectors int, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write failed",
			"target", target,
			"bytes", bytes,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "store written",
		"target", target,
		"vectors", vectors,
		"bytes", bytes,
	)
}

// LogRead logs a persistence read.
func (l *Logger) LogRead(ctx context.Context, source string, vectors int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "read failed",
			"source", source,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "store read",
		"source", source,
		"vectors", vectors,
	)
}
