package kclust

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Logger wraps slog.Logger with kclust-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithRestart adds a restart index field to the logger.
func (l *Logger) WithRestart(restart int) *Logger {
	return &Logger{
		Logger: l.Logger.With("restart", restart),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogRestart logs the completion of one restart.
func (l *Logger) LogRestart(ctx context.Context, restart int, inertia float64, elapsed time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "restart failed",
			"restart", restart,
			"elapsed", elapsed,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "restart completed",
			"restart", restart,
			"inertia", inertia,
			"elapsed", elapsed,
		)
	}
}

// LogTrain logs a training run.
func (l *Logger) LogTrain(ctx context.Context, tries, failed int, inertia float64, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "training failed",
			"tries", tries,
			"failed", failed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "training completed",
			"tries", tries,
			"failed", failed,
			"inertia", inertia,
			"elapsed", elapsed,
		)
	}
}

// LogWorkingSet logs the estimated memory of the restarts in flight.
func (l *Logger) LogWorkingSet(ctx context.Context, workers int, perRestart int64) {
	l.DebugContext(ctx, "restart working set",
		"workers", workers,
		"per_restart", humanize.IBytes(uint64(perRestart)),
		"total", humanize.IBytes(uint64(perRestart)*uint64(workers)),
	)
}

// LogReport logs a report write.
func (l *Logger) LogReport(ctx context.Context, key string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "report write failed",
			"key", key,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "report written",
			"key", key,
			"size", humanize.IBytes(uint64(size)),
		)
	}
}
