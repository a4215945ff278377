package graph

import (
	"context"
	"time"
)

// Write records one node's contribution to a super-step, for node-write
// logging between super-steps (spec §4.D put_writes).
type Write struct {
	TaskID  string
	Channel string
	Value   any
}

// Checkpoint is an immutable, persisted state snapshot per spec §3: created
// after each super-step, never modified, optionally pruned by retention
// policy.
type Checkpoint struct {
	ID       string
	ParentID string
	ThreadID string
	Ts       time.Time

	// ChannelValues is the fully-reduced state after the super-step.
	ChannelValues State

	// PendingWrites are the raw per-node contributions that produced
	// ChannelValues, retained for audit/replay.
	PendingWrites []Write

	// NextNodes is the frontier computed for the following super-step.
	NextNodes []string
}

// Checkpointer is the durable store of state per (thread, checkpoint), per
// spec §4.D. Implementations: embedded KV (checkpoint/kv), SQL
// (checkpoint/sql), and a resilient wrapper (checkpoint/resilient) composing
// the two.
type Checkpointer interface {
	// GetLatest returns the thread's head checkpoint, or nil if the thread
	// has never been written to.
	GetLatest(ctx context.Context, threadID string) (*Checkpoint, error)

	// List streams a thread's checkpoints newest-first.
	List(ctx context.Context, threadID string) ([]Checkpoint, error)

	// Put persists a new checkpoint as the thread's new head. parentID must
	// be the previous head's ID (or "" for a thread's first checkpoint).
	// Put is atomic per checkpoint.
	Put(ctx context.Context, threadID, parentID string, cp Checkpoint) (string, error)

	// PutWrites logs a super-step's per-node contributions, independent of
	// the composed checkpoint itself.
	PutWrites(ctx context.Context, threadID, checkpointID string, writes []Write) error
}
