package isodata

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with isodata-specific context.
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

// WithRunID adds a run_id field to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// LogLoad logs the outcome of loading the dataset.
func (l *Logger) LogLoad(ctx context.Context, rows, dimension int, err error) {
	if err != nil {
		l.WarnContext(ctx, "data size error",
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "data loaded",
			"rows", rows,
			"dimension", dimension,
		)
	}
}

// LogSeed logs the initial cluster centers.
func (l *Logger) LogSeed(ctx context.Context, requested int, indices []int) {
	if len(indices) < requested {
		l.WarnContext(ctx, "fewer distinct seed points than requested",
			"requested", requested,
			"seeded", len(indices),
		)
		return
	}
	l.DebugContext(ctx, "clusters seeded",
		"count", len(indices),
		"indices", indices,
	)
}

// LogRound logs a completed round.
func (l *Logger) LogRound(ctx context.Context, round int, action string, clusters int, meanDistance float64) {
	l.DebugContext(ctx, "round completed",
		"round", round,
		"action", action,
		"clusters", clusters,
		"mean_distance", meanDistance,
	)
}

// LogPrune logs clusters discarded for being undersized.
func (l *Logger) LogPrune(ctx context.Context, removed, remaining int) {
	if removed == 0 {
		return
	}
	l.DebugContext(ctx, "undersized clusters discarded",
		"removed", removed,
		"remaining", remaining,
	)
}

// LogSplit logs a split.
func (l *Logger) LogSplit(ctx context.Context, source, created uint64, axis int) {
	l.DebugContext(ctx, "cluster split",
		"cluster", source,
		"new_cluster", created,
		"axis", axis,
	)
}

// LogMerge logs a merge.
func (l *Logger) LogMerge(ctx context.Context, kept, absorbed uint64, distance float64) {
	l.DebugContext(ctx, "clusters merged",
		"cluster", kept,
		"absorbed", absorbed,
		"distance", distance,
	)
}

// LogRun logs the end of a run.
func (l *Logger) LogRun(ctx context.Context, rounds, clusters int, err error) {
	if err != nil {
		l.WarnContext(ctx, "run aborted",
			"rounds", rounds,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "run completed",
			"rounds", rounds,
			"clusters", clusters,
		)
	}
}
