package isolation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_SpawnCreatesWorkspaceDir(t *testing.T) {
	p := NewProcess()
	ws := filepath.Join(t.TempDir(), "journey-a")

	h, err := p.Spawn(context.Background(), "journey-a", ws, "", false)
	require.NoError(t, err)
	assert.Equal(t, "journey-a", h.JourneyID)
	assert.Equal(t, "process", h.Backend)

	info, err := os.Stat(ws)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestProcess_ExecRunsInWorkspaceDir(t *testing.T) {
	p := NewProcess()
	ws := t.TempDir()
	h, err := p.Spawn(context.Background(), "j1", ws, "", false)
	require.NoError(t, err)

	result, err := p.Exec(context.Background(), h, []string{"true"}, "", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
}

func TestProcess_ExecRejectsEmptyCommand(t *testing.T) {
	p := NewProcess()
	h, err := p.Spawn(context.Background(), "j1", t.TempDir(), "", false)
	require.NoError(t, err)

	_, err = p.Exec(context.Background(), h, nil, "", 5)
	require.Error(t, err)
}

func TestProcess_CopyInWritesIntoWorkspace(t *testing.T) {
	p := NewProcess()
	ws := t.TempDir()
	h, err := p.Spawn(context.Background(), "j1", ws, "", false)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "source.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o644))

	require.NoError(t, p.CopyIn(context.Background(), h, src, "dest.txt"))

	data, err := os.ReadFile(filepath.Join(ws, "dest.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestProcess_CopyInRejectsEmptyDestination(t *testing.T) {
	p := NewProcess()
	h, err := p.Spawn(context.Background(), "j1", t.TempDir(), "", false)
	require.NoError(t, err)

	err = p.CopyIn(context.Background(), h, "src.txt", "")
	require.Error(t, err)
}

func TestProcess_StatusReflectsSpawnAndKill(t *testing.T) {
	p := NewProcess()
	h, err := p.Spawn(context.Background(), "j1", t.TempDir(), "", false)
	require.NoError(t, err)

	status, err := p.Status(context.Background(), h)
	require.NoError(t, err)
	assert.True(t, status.Alive)

	require.NoError(t, p.Kill(context.Background(), h))
	status, err = p.Status(context.Background(), h)
	require.NoError(t, err)
	assert.False(t, status.Alive)
}

func TestProcess_KillIsIdempotent(t *testing.T) {
	p := NewProcess()
	h, err := p.Spawn(context.Background(), "j1", t.TempDir(), "", false)
	require.NoError(t, err)

	require.NoError(t, p.Kill(context.Background(), h))
	require.NoError(t, p.Kill(context.Background(), h))
}

func TestProcess_StatusUnknownJourneyIsNotAlive(t *testing.T) {
	p := NewProcess()
	status, err := p.Status(context.Background(), Handle{JourneyID: "never-spawned"})
	require.NoError(t, err)
	assert.False(t, status.Alive)
}
