package checkpoint

import (
	"context"
	"errors"
	"time"

	"github.com/langgraph-go/runtime/errs"
	"github.com/langgraph-go/runtime/graph"
	"github.com/langgraph-go/runtime/observability"
)

// defaultRetryDelays is the resilient wrapper's backoff schedule, per spec
// §4.D: bounded retries (default 3, delays 1/2/4 seconds).
var defaultRetryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// Resilient wraps a primary Checkpointer (intended to be the SQL back-end)
// with bounded retries; on exhaustion it transparently falls back to an
// embedded KV back-end and stays in that degraded mode for the remainder of
// the process, logging a warning once when it degrades. Degraded mode is not
// shared across processes — a documented compromise preserving
// availability, per spec §4.D.
type Resilient struct {
	primary   graph.Checkpointer
	fallback  *KV
	delays    []time.Duration
	logger    observability.Logger
	degraded  bool
}

// NewResilient wraps primary with retries, falling back to fallbackKVPath on
// exhaustion. logger may be nil (degraded warnings are then dropped).
func NewResilient(primary graph.Checkpointer, fallbackKVPath string, logger observability.Logger) (*Resilient, error) {
	kv, err := OpenKV(fallbackKVPath)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.NoopLogger{}
	}
	return &Resilient{primary: primary, fallback: kv, delays: defaultRetryDelays, logger: logger}, nil
}

func (r *Resilient) degrade(ctx context.Context, op string, cause error) {
	if r.degraded {
		return
	}
	r.degraded = true
	r.logger.Log(ctx, observability.LogEvent{
		Level:  observability.LevelWarn,
		Source: "checkpoint.resilient",
		Msg:    "degraded: falling back to embedded KV checkpointer",
		Data:   map[string]any{"op": op, "cause": cause.Error()},
	})
}

// active returns the checkpointer currently serving requests: the primary
// unless a prior exhausted-retry failure degraded this wrapper.
func (r *Resilient) active() graph.Checkpointer {
	if r.degraded {
		return r.fallback
	}
	return r.primary
}

// withRetry runs op against the primary (or, once degraded, directly against
// the fallback with no retries) using the configured backoff schedule.
func (r *Resilient) withRetry(ctx context.Context, name string, op func(graph.Checkpointer) error) error {
	if r.degraded {
		return op(r.fallback)
	}

	var lastErr error
	for attempt := 0; attempt <= len(r.delays); attempt++ {
		lastErr = op(r.primary)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, errs.ErrStoreRetryable) {
			return lastErr
		}
		if attempt == len(r.delays) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delays[attempt]):
		}
	}
	r.degrade(ctx, name, lastErr)
	return op(r.fallback)
}

func (r *Resilient) GetLatest(ctx context.Context, threadID string) (*graph.Checkpoint, error) {
	var out *graph.Checkpoint
	err := r.withRetry(ctx, "get_latest", func(cp graph.Checkpointer) error {
		var innerErr error
		out, innerErr = cp.GetLatest(ctx, threadID)
		return innerErr
	})
	return out, err
}

func (r *Resilient) List(ctx context.Context, threadID string) ([]graph.Checkpoint, error) {
	var out []graph.Checkpoint
	err := r.withRetry(ctx, "list", func(cp graph.Checkpointer) error {
		var innerErr error
		out, innerErr = cp.List(ctx, threadID)
		return innerErr
	})
	return out, err
}

func (r *Resilient) Put(ctx context.Context, threadID, parentID string, cp graph.Checkpoint) (string, error) {
	var id string
	err := r.withRetry(ctx, "put", func(store graph.Checkpointer) error {
		var innerErr error
		id, innerErr = store.Put(ctx, threadID, parentID, cp)
		return innerErr
	})
	return id, err
}

func (r *Resilient) PutWrites(ctx context.Context, threadID, checkpointID string, writes []graph.Write) error {
	return r.withRetry(ctx, "put_writes", func(store graph.Checkpointer) error {
		return store.PutWrites(ctx, threadID, checkpointID, writes)
	})
}

// Close releases the fallback KV's file handle. The primary's lifecycle is
// owned by its caller.
func (r *Resilient) Close() error { return r.fallback.Close() }

var _ graph.Checkpointer = (*Resilient)(nil)
