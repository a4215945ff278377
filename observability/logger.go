package observability

import (
	"context"
	"log/slog"
)

// Level is an event severity, mapped one-to-one onto slog's levels by
// slogLevel, grounded on
// tailored-agentic-units-kernel/observability's OTel-aligned Level type.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogEvent is a structured log entry emitted by the scheduler, executor, or
// worker factory.
type LogEvent struct {
	Level  Level
	Source string // e.g. "scheduler", "executor", "worker.factory"
	Msg    string
	Data   map[string]any
}

// Logger receives structured log events. The default implementation emits
// to log/slog; callers may substitute any sink that implements this
// interface (e.g. to fan out to a remote collector).
type Logger interface {
	Log(ctx context.Context, event LogEvent)
}

// SlogLogger emits events to a *slog.Logger, flattening Data as attributes.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps logger. A nil logger uses slog.Default().
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) Log(ctx context.Context, event LogEvent) {
	attrs := make([]slog.Attr, 0, len(event.Data)+1)
	attrs = append(attrs, slog.String("source", event.Source))
	for k, v := range event.Data {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.LogAttrs(ctx, event.Level.slogLevel(), event.Msg, attrs...)
}

// NoopLogger discards every event. Useful as a default when no logger is
// configured but a non-nil Logger is required.
type NoopLogger struct{}

func (NoopLogger) Log(context.Context, LogEvent) {}
