// Package provider implements the agent provider abstraction from spec
// §4.G: a uniform execute_task/name/metadata/estimate_cost contract over a
// chat-endpoint transport and a CLI-subprocess transport, with session
// continuity threaded through the checkpointed state.
package provider

import (
	"context"
	"fmt"

	"github.com/langgraph-go/runtime/graph"
)

// Provider is an agent transport: a single synchronous call that turns a
// task description and the current state into the role's partial update.
type Provider interface {
	// ExecuteTask runs task against the given role's state fields and
	// returns the partial update the caller should merge, per spec §4.G.
	ExecuteTask(ctx context.Context, task string, state graph.State, cfg Config) (graph.PartialUpdate, error)

	// Name identifies the provider variant ("chat_endpoint:<vendor>",
	// "cli_subprocess").
	Name() string

	// Metadata returns provider-specific descriptive info (e.g. vendor,
	// command, container).
	Metadata() map[string]string

	// EstimateCost returns the USD cost of a call with the given token counts.
	EstimateCost(inTokens, outTokens int) float64
}

// Config parameterizes a single ExecuteTask call.
type Config struct {
	Role  string
	Model string

	// Tools are optional tool specs the underlying chat model may call.
	Tools []ToolSpec

	// MaxTurns and TimeoutPerTurn bound the CLI-subprocess provider's
	// overall deadline (MaxTurns * TimeoutPerTurn), per spec §4.G.
	MaxTurns       int
	TimeoutPerTurn int // seconds
}

// ToolSpec describes a tool the underlying model may call, grounded on the
// teacher's graph/model.ToolSpec.
type ToolSpec struct {
	Name        string
	Description string
	Schema      map[string]any
}

// ToolCall is a single tool invocation the model requested, grounded on the
// teacher's graph/model.ToolCall.
type ToolCall struct {
	Name  string
	Input map[string]any
}

// Response is a provider's normalized reply, per spec §4.G: "maps the
// response's content and tool-call descriptors into a normalised shape
// {content, tool_calls[]}".
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// fieldNames returns the three state field names a role's provider node
// owns, per spec §4.G: "{role}_output", "{role}_session_id",
// "{role}_tokens".
func fieldNames(role string) (output, sessionID, tokens string) {
	return role + "_output", role + "_session_id", role + "_tokens"
}

// TokenUsage is the shape written to "{role}_tokens".
type TokenUsage struct {
	Cost           float64 `json:"cost"`
	Turns          int     `json:"turns"`
	DurationMs     int64   `json:"duration_ms"`
	DurationAPIMs  int64   `json:"duration_api_ms"`
}

// buildUpdate assembles the three-field partial update a provider node
// returns, threading session continuity: it writes sessionID back to
// "{role}_session_id". Callers read the prior value with PriorSessionID
// before the call and pass either the transport's new session id or that
// prior value.
// "{role}_output" carries the full normalized {content, tool_calls[]} shape
// so graph code downstream of a chat provider can route on requested tool
// calls, not just the text content.
func buildUpdate(role, sessionID string, out Response, usage TokenUsage) graph.PartialUpdate {
	output, sessField, tokField := fieldNames(role)
	return graph.PartialUpdate{
		output:    out,
		sessField: sessionID,
		tokField:  usage,
	}
}

// PriorSessionID reads the role's session id from state, if any, so a
// provider can pass it to its transport as a resume hint before issuing a
// call, per spec §4.G session continuity.
func PriorSessionID(role string, state graph.State) string {
	_, sessField, _ := fieldNames(role)
	if v, ok := state[sessField]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Node adapts a Provider into a graph.NodeFunc for the given role, owning
// the role's three fields. This is the node the agent-injection algorithm
// (Executor.inject in executor/executor.go) wires into the caller's graph.
func Node(role string, p Provider, task string, cfg Config) graph.NodeFunc {
	return func(ctx context.Context, state graph.State) (graph.PartialUpdate, error) {
		update, err := p.ExecuteTask(ctx, task, state, cfg)
		if err != nil {
			return nil, fmt.Errorf("provider %s role %s: %w", p.Name(), role, err)
		}
		return update, nil
	}
}
