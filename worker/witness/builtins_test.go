package witness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSize_WarnsWhenContentExceedsLimit(t *testing.T) {
	warnings, err := FileSize(context.Background(), map[string]any{"content": "0123456789"}, 5)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "10")
	assert.Contains(t, warnings[0].Message, "5")
}

func TestFileSize_SilentWithinLimit(t *testing.T) {
	warnings, err := FileSize(context.Background(), map[string]any{"content": "ab"}, 5)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestPathTraversal_WarnsOnParentEscape(t *testing.T) {
	warnings, err := PathTraversal(context.Background(), map[string]any{"path": "../../etc/passwd"}, "/workspace")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
}

func TestPathTraversal_SilentOnRelativePath(t *testing.T) {
	warnings, err := PathTraversal(context.Background(), map[string]any{"path": "notes/todo.txt"}, "/workspace")
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestNetworkDenial_WarnsOnHostField(t *testing.T) {
	warnings, err := NetworkDenial(context.Background(), map[string]any{"host": "example.com"}, nil)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
}

func TestNetworkDenial_SilentWithoutNetworkMarkers(t *testing.T) {
	warnings, err := NetworkDenial(context.Background(), map[string]any{"type": "write"}, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestSearchRateLimiter_WarnsPastLimitWithinWindow(t *testing.T) {
	l := newSearchRateLimiter()
	action := map[string]any{"type": "search", "journey_id": "j1"}

	for i := 0; i < 3; i++ {
		warnings, err := l.Witness(context.Background(), action, 3)
		require.NoError(t, err)
		assert.Empty(t, warnings)
	}
	warnings, err := l.Witness(context.Background(), action, 3)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
}

func TestSearchRateLimiter_IgnoresNonSearchActions(t *testing.T) {
	l := newSearchRateLimiter()
	warnings, err := l.Witness(context.Background(), map[string]any{"type": "write"}, 0)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestSearchRateLimiter_TracksSeparatelyPerJourney(t *testing.T) {
	l := newSearchRateLimiter()
	for i := 0; i < 2; i++ {
		_, err := l.Witness(context.Background(), map[string]any{"type": "search", "journey_id": "j1"}, 2)
		require.NoError(t, err)
	}
	warnings, err := l.Witness(context.Background(), map[string]any{"type": "search", "journey_id": "j2"}, 2)
	require.NoError(t, err)
	assert.Empty(t, warnings, "a fresh journey must not inherit another journey's history")
}
