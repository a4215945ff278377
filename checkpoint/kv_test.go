package checkpoint

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langgraph-go/runtime/graph"
)

func openTestKV(t *testing.T) *KV {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkpoints.db")
	kv, err := OpenKV(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestKV_PutThenGetLatest(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()

	id, err := kv.Put(ctx, "t1", "", graph.Checkpoint{Ts: time.Now(), ChannelValues: graph.State{"x": float64(1)}})
	require.NoError(t, err)

	head, err := kv.GetLatest(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Equal(t, id, head.ID)
}

func TestKV_ListNewestFirst(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()
	now := time.Now()
	id1, _ := kv.Put(ctx, "t1", "", graph.Checkpoint{Ts: now})
	id2, _ := kv.Put(ctx, "t1", id1, graph.Checkpoint{Ts: now.Add(time.Second)})

	cps, err := kv.List(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, cps, 2)
	assert.Equal(t, id2, cps[0].ID)
	assert.Equal(t, id1, cps[1].ID)
}

func TestKV_GetLatestUnknownThreadIsNil(t *testing.T) {
	kv := openTestKV(t)
	head, err := kv.GetLatest(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, head)
}

func TestKV_PutWritesAndPersistAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.db")
	kv, err := OpenKV(path)
	require.NoError(t, err)

	id, err := kv.Put(context.Background(), "t1", "", graph.Checkpoint{Ts: time.Now(), ChannelValues: graph.State{"x": float64(1)}})
	require.NoError(t, err)
	require.NoError(t, kv.PutWrites(context.Background(), "t1", id, []graph.Write{{TaskID: "a", Channel: "x", Value: float64(1)}}))
	require.NoError(t, kv.Close())

	reopened, err := OpenKV(path)
	require.NoError(t, err)
	defer reopened.Close()

	head, err := reopened.GetLatest(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Equal(t, id, head.ID)
}
