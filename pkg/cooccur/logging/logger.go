// Package logging wraps slog.Logger with field names shared across the
// cooccurrence packages.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with run-oriented helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that writes human-readable text to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that writes JSON to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// OrNoop returns l, or a discarding logger when l is nil.
func OrNoop(l *Logger) *Logger {
	if l == nil {
		return NoopLogger()
	}
	return l
}

// WithRun tags every record with a run ID.
func (l *Logger) WithRun(id string) *Logger {
	return &Logger{Logger: l.Logger.With("run", id)}
}

// RunStats summarizes one indicator computation.
type RunStats struct {
	Rows      int
	Items     int
	NNZInput  int
	NNZCapped int
	Dropped   int
	Pairs     int
	Elapsed   time.Duration
}

// LogRun logs the outcome of an indicator computation.
func (l *Logger) LogRun(ctx context.Context, st RunStats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "indicator run failed",
			"rows", st.Rows,
			"items", st.Items,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "indicator run completed",
		"rows", st.Rows,
		"items", st.Items,
		"nnz_input", st.NNZInput,
		"nnz_capped", st.NNZCapped,
		"dropped", st.Dropped,
		"pairs", st.Pairs,
		"elapsed", st.Elapsed,
	)
}

// LogSave logs persisting a run or snapshot.
func (l *Logger) LogSave(ctx context.Context, target string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"target", target,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "saved",
		"target", target,
	)
}
