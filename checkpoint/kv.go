package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/langgraph-go/runtime/errs"
	"github.com/langgraph-go/runtime/graph"
)

var (
	checkpointsBucket = []byte("checkpoints")
	writesBucket      = []byte("writes")
)

// KV is the embedded, single-process, file-backed checkpointer back-end
// from spec §4.D, implemented over bbolt (a WAL-style single-writer B+tree,
// the Go analogue of the teacher's in-memory-only store.MemStore made
// durable). Schema mirrors the spec's logical tables: checkpoints keyed by
// (thread_id, id) and writes keyed by (thread_id, checkpoint_id).
type KV struct {
	db *bolt.DB
}

// OpenKV opens (initialising schema on first open, per spec §4.D) the
// embedded KV store at path. bbolt's default options enable its
// write-ahead-log-equivalent freelist/sync discipline, satisfying the
// "recommended journaling discipline" note in spec §4.D.
func OpenKV(path string) (*KV, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open embedded kv %s: %v", errs.ErrStoreUnavailable, path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(checkpointsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(writesBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: init schema: %v", errs.ErrStoreUnavailable, err)
	}
	return &KV{db: db}, nil
}

// Close releases the underlying file handle.
func (k *KV) Close() error { return k.db.Close() }

// kvRecord is the on-disk envelope for a checkpoint, ordered for chronological
// cursor scans within a thread's sub-bucket.
type kvRecord struct {
	Checkpoint graph.Checkpoint
}

func threadBucketKey(threadID string) []byte { return []byte("t:" + threadID) }

// recordKey orders records chronologically within a thread: zero-padded
// nanosecond timestamp, then id, so a forward cursor scan yields
// oldest-first and a reverse scan yields newest-first.
func recordKey(ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%020d:%s", ts.UnixNano(), id))
}

func (k *KV) GetLatest(_ context.Context, threadID string) (*graph.Checkpoint, error) {
	var latest *graph.Checkpoint
	err := k.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(checkpointsBucket)
		b := root.Bucket(threadBucketKey(threadID))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		key, val := c.Last()
		if key == nil {
			return nil
		}
		var rec kvRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		latest = &rec.Checkpoint
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreRetryable, err)
	}
	return latest, nil
}

func (k *KV) List(_ context.Context, threadID string) ([]graph.Checkpoint, error) {
	var out []graph.Checkpoint
	err := k.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(checkpointsBucket)
		b := root.Bucket(threadBucketKey(threadID))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for key, val := c.Last(); key != nil; key, val = c.Prev() {
			var rec kvRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			out = append(out, rec.Checkpoint)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreRetryable, err)
	}
	return out, nil
}

func (k *KV) Put(_ context.Context, threadID, parentID string, cp graph.Checkpoint) (string, error) {
	cp.ID = uuid.NewString()
	cp.ThreadID = threadID
	cp.ParentID = parentID

	err := k.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(checkpointsBucket)
		b, err := root.CreateBucketIfNotExists(threadBucketKey(threadID))
		if err != nil {
			return err
		}
		payload, err := json.Marshal(kvRecord{Checkpoint: cp})
		if err != nil {
			return err
		}
		return b.Put(recordKey(cp.Ts, cp.ID), payload)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrStoreRetryable, err)
	}
	return cp.ID, nil
}

func (k *KV) PutWrites(_ context.Context, threadID, checkpointID string, writes []graph.Write) error {
	if len(writes) == 0 {
		return nil
	}
	err := k.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(writesBucket)
		b, err := root.CreateBucketIfNotExists(threadBucketKey(threadID))
		if err != nil {
			return err
		}
		payload, err := json.Marshal(writes)
		if err != nil {
			return err
		}
		return b.Put([]byte(checkpointID), payload)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStoreRetryable, err)
	}
	return nil
}

var _ graph.Checkpointer = (*KV)(nil)
