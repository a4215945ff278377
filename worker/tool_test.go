package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langgraph-go/runtime/worker/definition"
)

func testTool(t *testing.T, body Body) (*Tool, *definition.Definition) {
	t.Helper()
	def := testDefinition(t)
	f := testFactory(t, func(*definition.Definition) (Body, error) { return body, nil })
	loadDef := func(workerID string) (*definition.Definition, error) { return def, nil }
	return NewTool(f, loadDef), def
}

// TestTool_VoidExecuteGating drives the end-to-end scenario of spec §8:
// a file-size constraint over budget must surface in void's warnings and
// execute_in_worker must refuse without ever invoking the side-effecting
// body, leaving no state change.
func TestTool_VoidExecuteGating(t *testing.T) {
	body := &fakeBody{
		predictResult: VoidResult{Prediction: "would write 10 bytes"},
		actResult:     ExecuteResult{Success: true, SideEffectOccurred: true, Output: "wrote file"},
	}
	tool, _ := testTool(t, body)
	ctx := context.Background()

	spawnResp, err := tool.SpawnWorker(ctx, "file_writer", "journey-gate", "process")
	require.NoError(t, err)
	assert.True(t, spawnResp.Success)

	resp, err := tool.ExecuteInWorker(ctx, "journey-gate", Action{"content": "0123456789"})
	require.NoError(t, err)
	require.True(t, resp.ConstraintViolation)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0].Message, "10")
	assert.Contains(t, resp.Warnings[0].Message, "5")
	assert.Equal(t, 0, body.actCalls, "execute must never run the side-effecting body once void raises a warning")
}

func TestTool_ExecuteInWorkerRunsWhenWithinConstraints(t *testing.T) {
	body := &fakeBody{
		predictResult: VoidResult{Prediction: "would write 2 bytes"},
		actResult:     ExecuteResult{Success: true, SideEffectOccurred: true, Output: "wrote file"},
	}
	tool, _ := testTool(t, body)
	ctx := context.Background()

	_, err := tool.SpawnWorker(ctx, "file_writer", "journey-ok", "process")
	require.NoError(t, err)

	resp, err := tool.ExecuteInWorker(ctx, "journey-ok", Action{"content": "ab"})
	require.NoError(t, err)
	assert.False(t, resp.ConstraintViolation)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, body.actCalls)
}

func TestTool_GetWorkerStateReturnsBodyState(t *testing.T) {
	body := &fakeBody{}
	tool, _ := testTool(t, body)
	ctx := context.Background()

	_, err := tool.SpawnWorker(ctx, "file_writer", "journey-state", "process")
	require.NoError(t, err)

	state, err := tool.GetWorkerState(ctx, "journey-state")
	require.NoError(t, err)
	assert.Contains(t, state["workspace"], "journey-state")
}

func TestTool_KillWorkerThenResumeFails(t *testing.T) {
	body := &fakeBody{}
	tool, _ := testTool(t, body)
	ctx := context.Background()

	_, err := tool.SpawnWorker(ctx, "file_writer", "journey-kill", "process")
	require.NoError(t, err)

	resp, err := tool.KillWorker(ctx, "journey-kill")
	require.NoError(t, err)
	assert.True(t, resp.Success)

	_, err = tool.GetWorkerState(ctx, "journey-kill")
	require.Error(t, err)
}

func TestTool_ExecuteInWorkerUnknownJourney(t *testing.T) {
	body := &fakeBody{}
	tool, _ := testTool(t, body)

	_, err := tool.ExecuteInWorker(context.Background(), "ghost-journey", Action{})
	require.Error(t, err)
}
