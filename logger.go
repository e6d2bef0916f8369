package clustergo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with clustergo-specific context.
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
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRound adds a round field to the logger.
func (l *Logger) WithRound(round int) *Logger {
	return &Logger{
		Logger: l.Logger.With("round", round),
	}
}

// WithPolicy adds a namespace policy field to the logger.
func (l *Logger) WithPolicy(policy string) *Logger {
	return &Logger{
		Logger: l.Logger.With("policy", policy),
	}
}

// LogRound logs one label propagation round.
func (l *Logger) LogRound(ctx context.Context, round int, changed int64) {
	l.InfoContext(ctx, "round completed",
		"round", round,
		"changed", changed,
	)
}

// LogRun logs the outcome of one clustering run.
func (l *Logger) LogRun(ctx context.Context, rounds int, converged bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "clustering failed",
			"rounds", rounds,
			"error", err,
		)
		return
	}
	if !converged {
		l.WarnContext(ctx, "clustering capped before convergence",
			"rounds", rounds,
		)
		return
	}
	l.InfoContext(ctx, "clustering converged",
		"rounds", rounds,
	)
}
