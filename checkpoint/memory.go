// Package checkpoint implements graph.Checkpointer: an in-memory reference
// implementation for tests, a durable embedded KV back-end (bbolt), a SQL
// relational back-end, and a resilient wrapper that retries the SQL back-end
// and falls back to embedded KV on exhaustion (spec §4.D).
package checkpoint

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/langgraph-go/runtime/graph"
)

// Memory is an in-process graph.Checkpointer, grounded on the teacher's
// store.MemStore, generalized from per-state storage to the spec's
// (thread_id, checkpoint_id) keying.
type Memory struct {
	mu       sync.RWMutex
	byThread map[string][]graph.Checkpoint // append-ordered, oldest first
	writes   map[string][]graph.Write      // "threadID:checkpointID" -> writes
}

// NewMemory creates an empty in-memory checkpointer.
func NewMemory() *Memory {
	return &Memory{
		byThread: make(map[string][]graph.Checkpoint),
		writes:   make(map[string][]graph.Write),
	}
}

func (m *Memory) GetLatest(_ context.Context, threadID string) (*graph.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cps := m.byThread[threadID]
	if len(cps) == 0 {
		return nil, nil
	}
	head := cps[len(cps)-1]
	return &head, nil
}

func (m *Memory) List(_ context.Context, threadID string) ([]graph.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cps := make([]graph.Checkpoint, len(m.byThread[threadID]))
	copy(cps, m.byThread[threadID])
	sort.Slice(cps, func(i, j int) bool { return cps[i].Ts.After(cps[j].Ts) })
	return cps, nil
}

func (m *Memory) Put(_ context.Context, threadID, parentID string, cp graph.Checkpoint) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp.ID = uuid.NewString()
	cp.ThreadID = threadID
	cp.ParentID = parentID
	m.byThread[threadID] = append(m.byThread[threadID], cp)
	return cp.ID, nil
}

func (m *Memory) PutWrites(_ context.Context, threadID, checkpointID string, writes []graph.Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := threadID + ":" + checkpointID
	m.writes[key] = append(m.writes[key], writes...)
	return nil
}

var _ graph.Checkpointer = (*Memory)(nil)
