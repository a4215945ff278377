package checkpoint

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langgraph-go/runtime/errs"
	"github.com/langgraph-go/runtime/graph"
)

// flakyCheckpointer fails its first N calls with a retryable error, then
// succeeds, to exercise Resilient's backoff loop without a long sleep.
type flakyCheckpointer struct {
	graph.Checkpointer
	failUntil int
	calls     int
}

func (f *flakyCheckpointer) Put(ctx context.Context, threadID, parentID string, cp graph.Checkpoint) (string, error) {
	f.calls++
	if f.calls <= f.failUntil {
		return "", errs.ErrStoreRetryable
	}
	return f.Checkpointer.Put(ctx, threadID, parentID, cp)
}

// alwaysFailCheckpointer fails every call with a retryable error, forcing
// Resilient to exhaust retries and degrade.
type alwaysFailCheckpointer struct{}

func (alwaysFailCheckpointer) GetLatest(context.Context, string) (*graph.Checkpoint, error) {
	return nil, errs.ErrStoreRetryable
}
func (alwaysFailCheckpointer) List(context.Context, string) ([]graph.Checkpoint, error) {
	return nil, errs.ErrStoreRetryable
}
func (alwaysFailCheckpointer) Put(context.Context, string, string, graph.Checkpoint) (string, error) {
	return "", errs.ErrStoreRetryable
}
func (alwaysFailCheckpointer) PutWrites(context.Context, string, string, []graph.Write) error {
	return errs.ErrStoreRetryable
}

func newTestResilient(t *testing.T, primary graph.Checkpointer) *Resilient {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fallback.db")
	r, err := NewResilient(primary, path, nil)
	require.NoError(t, err)
	// Shrink delays so exhausting retries in a test doesn't take 1+2+4s.
	r.delays = []time.Duration{time.Millisecond, time.Millisecond}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestResilient_RetriesThenSucceedsOnPrimary(t *testing.T) {
	flaky := &flakyCheckpointer{Checkpointer: NewMemory(), failUntil: 1}
	r := newTestResilient(t, flaky)

	id, err := r.Put(context.Background(), "t1", "", graph.Checkpoint{Ts: time.Now()})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.False(t, r.degraded)
}

func TestResilient_DegradesAfterExhaustingRetries(t *testing.T) {
	r := newTestResilient(t, alwaysFailCheckpointer{})

	id, err := r.Put(context.Background(), "t1", "", graph.Checkpoint{Ts: time.Now(), ChannelValues: graph.State{"x": float64(1)}})
	require.NoError(t, err, "falls back to KV after exhausting retries instead of failing")
	assert.NotEmpty(t, id)
	assert.True(t, r.degraded)
}

func TestResilient_StaysDegradedAndSkipsRetriesOnSubsequentCalls(t *testing.T) {
	primary := &flakyCheckpointer{Checkpointer: alwaysFailCheckpointer{}, failUntil: 1 << 30}
	r := newTestResilient(t, primary)
	_, err := r.Put(context.Background(), "t1", "", graph.Checkpoint{Ts: time.Now()})
	require.NoError(t, err)
	require.True(t, r.degraded)
	callsAfterDegrade := primary.calls

	// Now the fallback serves every subsequent call directly, with no
	// further retry attempts against the still-failing primary.
	head, err := r.GetLatest(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, head)
	_, err = r.Put(context.Background(), "t1", head.ID, graph.Checkpoint{Ts: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, callsAfterDegrade, primary.calls, "the primary is not called again once degraded")
}

func TestResilient_NonRetryableErrorFailsImmediately(t *testing.T) {
	primary := &erroringCheckpointer{err: errors.New("boom")}
	r := newTestResilient(t, primary)

	_, err := r.Put(context.Background(), "t1", "", graph.Checkpoint{})
	require.Error(t, err)
	assert.False(t, r.degraded, "a non-retryable error must not trigger fallback")
}

type erroringCheckpointer struct {
	err error
}

func (e *erroringCheckpointer) GetLatest(context.Context, string) (*graph.Checkpoint, error) {
	return nil, e.err
}
func (e *erroringCheckpointer) List(context.Context, string) ([]graph.Checkpoint, error) {
	return nil, e.err
}
func (e *erroringCheckpointer) Put(context.Context, string, string, graph.Checkpoint) (string, error) {
	return "", e.err
}
func (e *erroringCheckpointer) PutWrites(context.Context, string, string, []graph.Write) error {
	return e.err
}
