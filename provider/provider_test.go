package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langgraph-go/runtime/graph"
)

type fakeProvider struct {
	update graph.PartialUpdate
	err    error
}

func (f *fakeProvider) ExecuteTask(context.Context, string, graph.State, Config) (graph.PartialUpdate, error) {
	return f.update, f.err
}
func (f *fakeProvider) Name() string                   { return "fake" }
func (f *fakeProvider) Metadata() map[string]string    { return nil }
func (f *fakeProvider) EstimateCost(int, int) float64  { return 0 }

func TestPriorSessionID_AbsentReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", PriorSessionID("writer", graph.State{}))
}

func TestPriorSessionID_ReadsRoleField(t *testing.T) {
	state := graph.State{"writer_session_id": "sess-123"}
	assert.Equal(t, "sess-123", PriorSessionID("writer", state))
}

func TestNode_WrapsErrorWithRoleAndProvider(t *testing.T) {
	fp := &fakeProvider{err: assert.AnError}
	node := Node("writer", fp, "do the thing", Config{Role: "writer"})
	_, err := node(context.Background(), graph.State{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "provider fake")
	assert.Contains(t, err.Error(), "role writer")
}

func TestNode_ReturnsProviderUpdate(t *testing.T) {
	fp := &fakeProvider{update: graph.PartialUpdate{"writer_output": "done"}}
	node := Node("writer", fp, "do the thing", Config{Role: "writer"})
	update, err := node(context.Background(), graph.State{})
	require.NoError(t, err)
	assert.Equal(t, "done", update["writer_output"])
}

func TestBuildUpdate_SetsAllThreeFields(t *testing.T) {
	update := buildUpdate("writer", "sess-1", Response{Content: "hello"}, TokenUsage{Cost: 0.5, Turns: 1})
	out, ok := update["writer_output"].(Response)
	require.True(t, ok)
	assert.Equal(t, "hello", out.Content)
	assert.Equal(t, "sess-1", update["writer_session_id"])
	usage, ok := update["writer_tokens"].(TokenUsage)
	require.True(t, ok)
	assert.Equal(t, 0.5, usage.Cost)
}

func TestBuildUpdate_CarriesToolCalls(t *testing.T) {
	resp := Response{Content: "", ToolCalls: []ToolCall{{Name: "search", Input: map[string]any{"q": "go"}}}}
	update := buildUpdate("writer", "sess-1", resp, TokenUsage{})
	out, ok := update["writer_output"].(Response)
	require.True(t, ok)
	require.Len(t, out.ToolCalls, 1)
	assert.Equal(t, "search", out.ToolCalls[0].Name)
}
