package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	// Register the MySQL and SQLite drivers the multi-process and
	// single-process SQL deployments use, grounded on the teacher's
	// graph/store/mysql.go and graph/store/sqlite.go.
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/langgraph-go/runtime/errs"
	"github.com/langgraph-go/runtime/graph"
)

// SQL is the multi-process relational checkpointer back-end from spec
// §4.D: same logical schema as the embedded KV, with a thread_id index;
// Put is a single insert; List tolerates writes rows with no matching
// checkpoint (no foreign key is required).
type SQL struct {
	db *sql.DB
}

// OpenSQL opens driverName (e.g. "mysql", "sqlite") at dsn and initialises
// the checkpoints/writes schema if absent.
func OpenSQL(driverName, dsn string) (*SQL, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", errs.ErrStoreUnavailable, driverName, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", errs.ErrStoreUnavailable, driverName, err)
	}
	s := &SQL{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", errs.ErrStoreUnavailable, err)
	}
	return s, nil
}

func (s *SQL) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS checkpoints (
			thread_id  TEXT NOT NULL,
			id         TEXT NOT NULL,
			parent_id  TEXT,
			ts         TIMESTAMP NOT NULL,
			payload    BLOB NOT NULL,
			PRIMARY KEY (thread_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS writes (
			thread_id     TEXT NOT NULL,
			checkpoint_id TEXT NOT NULL,
			task_id       TEXT NOT NULL,
			channel       TEXT NOT NULL,
			value         BLOB
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQL) Close() error { return s.db.Close() }

type sqlPayload struct {
	ChannelValues graph.State `json:"channel_values"`
	NextNodes     []string    `json:"next_nodes"`
}

func (s *SQL) GetLatest(ctx context.Context, threadID string) (*graph.Checkpoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, parent_id, ts, payload FROM checkpoints
		WHERE thread_id = ? ORDER BY ts DESC LIMIT 1`, threadID)
	cp, err := scanCheckpoint(row, threadID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreRetryable, err)
	}
	return cp, nil
}

func (s *SQL) List(ctx context.Context, threadID string) ([]graph.Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, parent_id, ts, payload FROM checkpoints
		WHERE thread_id = ? ORDER BY ts DESC`, threadID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreRetryable, err)
	}
	defer rows.Close()

	var out []graph.Checkpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows, threadID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrStoreRetryable, err)
		}
		out = append(out, *cp)
	}
	return out, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanCheckpoint.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckpoint(row rowScanner, threadID string) (*graph.Checkpoint, error) {
	var id string
	var parentID sql.NullString
	var ts time.Time
	var payload []byte
	if err := row.Scan(&id, &parentID, &ts, &payload); err != nil {
		return nil, err
	}
	var p sqlPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}
	return &graph.Checkpoint{
		ID:            id,
		ParentID:      parentID.String,
		ThreadID:      threadID,
		Ts:            ts,
		ChannelValues: p.ChannelValues,
		NextNodes:     p.NextNodes,
	}, nil
}

func (s *SQL) Put(ctx context.Context, threadID, parentID string, cp graph.Checkpoint) (string, error) {
	cp.ID = uuid.NewString()
	payload, err := json.Marshal(sqlPayload{ChannelValues: cp.ChannelValues, NextNodes: cp.NextNodes})
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (thread_id, id, parent_id, ts, payload) VALUES (?, ?, ?, ?, ?)`,
		threadID, cp.ID, nullableString(parentID), cp.Ts, payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrStoreRetryable, err)
	}
	return cp.ID, nil
}

func (s *SQL) PutWrites(ctx context.Context, threadID, checkpointID string, writes []graph.Write) error {
	for _, w := range writes {
		val, err := json.Marshal(w.Value)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO writes (thread_id, checkpoint_id, task_id, channel, value) VALUES (?, ?, ?, ?, ?)`,
			threadID, checkpointID, w.TaskID, w.Channel, val)
		if err != nil {
			return fmt.Errorf("%w: %v", errs.ErrStoreRetryable, err)
		}
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ graph.Checkpointer = (*SQL)(nil)
