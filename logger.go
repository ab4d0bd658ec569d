package wavop

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with operator-specific helpers.
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
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRunID tags every record with a run identifier.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithKind adds the operator kind.
func (l *Logger) WithKind(k Kind) *Logger {
	return &Logger{
		Logger: l.Logger.With("kind", k.String()),
	}
}

// WithShots adds the number of shots.
func (l *Logger) WithShots(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("shots", n),
	}
}

// LogApply logs a whole operator application.
func (l *Logger) LogApply(ctx context.Context, k Kind, shots int, elapsed time.Duration, err error) {
	log := l.WithKind(k).WithShots(shots)
	if err != nil {
		log.ErrorContext(ctx, "apply failed", "error", err)
	} else {
		log.InfoContext(ctx, "apply completed", "elapsed", elapsed)
	}
}

// LogShot logs one per-shot solve.
func (l *Logger) LogShot(ctx context.Context, k Kind, shot int, elapsed time.Duration, err error) {
	log := l.WithKind(k)
	if err != nil {
		log.ErrorContext(ctx, "shot failed",
			"shot", shot,
			"error", err,
		)
	} else {
		log.DebugContext(ctx, "shot completed",
			"shot", shot,
			"elapsed", elapsed,
		)
	}
}

// LogRecordWrite logs persisted shot records.
func (l *Logger) LogRecordWrite(ctx context.Context, prefix string, written int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "record write failed",
			"prefix", prefix,
			"written", written,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "records written",
			"prefix", prefix,
			"written", written,
		)
	}
}

// LogObjective logs an objective evaluation.
func (l *Logger) LogObjective(ctx context.Context, shots int, fval float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "objective failed",
			"shots", shots,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "objective evaluated",
			"shots", shots,
			"fval", fval,
		)
	}
}
