package worker

import (
	"context"
	"fmt"

	"github.com/langgraph-go/runtime/worker/definition"
)

// ToolResponse is the payload returned to an outside caller of the worker
// tool interface (spec §6). ConstraintViolation is set, with Warnings
// populated, whenever execute_in_worker's automatic void() check finds
// warnings; Execute is refused in that case.
type ToolResponse struct {
	Success             bool
	ConstraintViolation bool
	Warnings            []Warning
	Output              string
	Err                 error
}

// Tool exposes the four-operation worker interface to callers outside the
// graph (spec §6): spawn_worker, execute_in_worker, get_worker_state,
// kill_worker. execute_in_worker always calls void first and refuses on
// any warning.
type Tool struct {
	factory *Factory
	loadDef func(workerID string) (*definition.Definition, error)
}

// NewTool builds a Tool over factory, resolving a worker_id to its
// Definition via loadDef (typically definition.Load against a known
// directory of worker files).
func NewTool(factory *Factory, loadDef func(workerID string) (*definition.Definition, error)) *Tool {
	return &Tool{factory: factory, loadDef: loadDef}
}

// SpawnWorker loads workerID's definition and spawns it under journeyID.
func (t *Tool) SpawnWorker(ctx context.Context, workerID, journeyID, isolationLevel string) (*ToolResponse, error) {
	def, err := t.loadDef(workerID)
	if err != nil {
		return nil, err
	}
	if _, err := t.factory.Spawn(ctx, def, journeyID, isolationLevel); err != nil {
		return nil, err
	}
	return &ToolResponse{Success: true}, nil
}

// ExecuteInWorker calls void(action) first; if it returns any warnings,
// execute is refused and the response carries ConstraintViolation=true.
func (t *Tool) ExecuteInWorker(ctx context.Context, journeyID string, action Action) (*ToolResponse, error) {
	inst, err := t.factory.Resume(journeyID)
	if err != nil {
		return nil, err
	}

	voidResult, err := inst.Void(ctx, action)
	if err != nil {
		return nil, err
	}
	if len(voidResult.Warnings) > 0 {
		return &ToolResponse{ConstraintViolation: true, Warnings: voidResult.Warnings}, nil
	}

	result, err := inst.Execute(ctx, action)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return &ToolResponse{Success: false, Output: result.Output, Err: result.Err}, nil
	}
	return &ToolResponse{Success: true, Output: result.Output}, nil
}

// GetWorkerState returns the live worker's domain state.
func (t *Tool) GetWorkerState(ctx context.Context, journeyID string) (map[string]any, error) {
	inst, err := t.factory.Resume(journeyID)
	if err != nil {
		return nil, err
	}
	return inst.State(ctx)
}

// KillWorker terminates and deregisters journeyID's worker.
func (t *Tool) KillWorker(ctx context.Context, journeyID string) (*ToolResponse, error) {
	if err := t.factory.Kill(ctx, journeyID); err != nil {
		return nil, fmt.Errorf("kill journey %s: %w", journeyID, err)
	}
	return &ToolResponse{Success: true}, nil
}
