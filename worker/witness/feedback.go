package witness

import (
	"context"

	"github.com/langgraph-go/runtime/observability"
)

// Violation is the record logged through a constraint's feedback channel
// when its witness returns warnings, per spec §4.J.
type Violation struct {
	WorkerID     string
	ConstraintID string
	ActionType   string
	Warnings     []Warning
	Timestamp    int64
}

// FeedbackSink routes a Violation to its destination (dashboard, log,
// email). Implementations must not block the caller on a down channel;
// best-effort delivery only.
type FeedbackSink interface {
	Notify(ctx context.Context, v Violation) error
}

// LogSink writes violations through a structured logger.
type LogSink struct {
	Logger observability.Logger
}

func (s LogSink) Notify(ctx context.Context, v Violation) error {
	s.Logger.Log(ctx, observability.LogEvent{
		Level:  observability.LevelWarn,
		Source: "worker.witness",
		Msg:    "constraint violation",
		Data: map[string]any{
			"worker_id":     v.WorkerID,
			"constraint_id": v.ConstraintID,
			"action_type":   v.ActionType,
			"warning_count": len(v.Warnings),
		},
	})
	return nil
}

// AlertDashboardSink forwards violations to an external dashboard client.
type AlertDashboardSink struct {
	// Push delivers a violation to the dashboard backend; tests and
	// callers without a real dashboard can substitute a recording stub.
	Push func(ctx context.Context, v Violation) error
}

func (s AlertDashboardSink) Notify(ctx context.Context, v Violation) error {
	if s.Push == nil {
		return nil
	}
	return s.Push(ctx, v)
}

// EmailSink forwards violations to an outbound mail sender.
type EmailSink struct {
	Send func(ctx context.Context, subject, body string) error
	To   string
}

func (s EmailSink) Notify(ctx context.Context, v Violation) error {
	if s.Send == nil {
		return nil
	}
	return s.Send(ctx, "worker constraint violation: "+v.ConstraintID, v.ActionType)
}

// Sinks maps a feedback channel name to its FeedbackSink implementation.
type Sinks struct {
	AlertDashboard FeedbackSink
	Log            FeedbackSink
	Email          FeedbackSink
}

// DefaultSinks returns the built-in set: a real LogSink plus no-op stubs
// for the two external channels, matching the specification's "default
// implementations route ... a logger is pluggable" guidance.
func DefaultSinks(logger observability.Logger) Sinks {
	return Sinks{
		AlertDashboard: AlertDashboardSink{},
		Log:            LogSink{Logger: logger},
		Email:          EmailSink{},
	}
}

// Route dispatches v to the sink matching channel. "log" and any unknown
// channel value go to the Log sink (validation elsewhere guarantees channel
// is one of the three declared values).
func (s Sinks) Route(ctx context.Context, channel string, v Violation) error {
	switch channel {
	case "alert_dashboard":
		return s.AlertDashboard.Notify(ctx, v)
	case "email":
		return s.Email.Notify(ctx, v)
	default:
		return s.Log.Notify(ctx, v)
	}
}
