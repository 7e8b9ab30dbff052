package spatialgo

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with spatialgo-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithBackend adds a backend field to the logger.
func (l *Logger) WithBackend(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("backend", name),
	}
}

// WithGeneration adds a generation field to the logger.
func (l *Logger) WithGeneration(gen uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("generation", gen),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogLoad logs a frame load.
func (l *Logger) LogLoad(ctx context.Context, loaded, dropped int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"loaded", loaded,
			"dropped", dropped,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "load completed",
			"loaded", loaded,
			"dropped", dropped,
		)
	}
}

// LogDropped logs an element skipped under the DropAndCount policy.
func (l *Logger) LogDropped(ctx context.Context, index int, err error) {
	l.WarnContext(ctx, "element dropped",
		"index", index,
		"error", err,
	)
}

// LogRebuild logs a rebuild barrier. Callers attach the generation with
// WithGeneration.
func (l *Logger) LogRebuild(ctx context.Context, count int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rebuild failed",
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "rebuild completed",
			"count", count,
			"duration", duration,
		)
	}
}

// LogFanout logs a neighbor fan-out pass.
func (l *Logger) LogFanout(ctx context.Context, queries, neighbors int, workers int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fanout failed",
			"queries", queries,
			"workers", workers,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "fanout completed",
			"queries", queries,
			"neighbors", neighbors,
			"workers", workers,
		)
	}
}
