package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/langgraph-go/runtime/errs"
	"github.com/langgraph-go/runtime/worker/definition"
	"github.com/langgraph-go/runtime/worker/isolation"
	"github.com/langgraph-go/runtime/worker/witness"
)

// Body is the worker-implementer-supplied logic for the six operations
// that vary per worker: State/Pressure/Flow/Evolve are free-form, and the
// Void/Execute prediction/action bodies are where a worker author writes
// their actual domain logic. The platform wraps Void/Execute with witness
// automation and the side-effect honesty checks; Body never sees those
// wrappers.
type Body interface {
	State(ctx context.Context, workspacePath string) (map[string]any, error)
	Pressure(ctx context.Context) (float64, error)
	Flow(ctx context.Context, flowCtx map[string]any) ([]FlowOption, error)
	// Predict must never perform a side effect; if the returned VoidResult
	// reports SideEffectOccurred true, Instance.Void treats it as a contract
	// violation and returns errs.ErrWitnessContract.
	Predict(ctx context.Context, action Action, h isolation.Handle) (VoidResult, error)
	Act(ctx context.Context, action Action, h isolation.Handle) (ExecuteResult, error)
	Evolve(ctx context.Context, feedback map[string]any) error
}

// Instance is one live worker bound to a journey: it owns the
// lazily-materialised isolation boundary and runs every Void call through
// the platform's automatic witness enforcement before delegating to Body.
type Instance struct {
	WorkerID      string
	JourneyID     string
	WorkspacePath string
	Definition    *definition.Definition

	backend isolation.Backend
	body    Body
	witnesses *witness.Registry
	sinks   witness.Sinks

	mu     sync.Mutex
	handle *isolation.Handle
}

// newInstance is unexported; instances are created only through Factory.Spawn.
func newInstance(workerID, journeyID, workspacePath string, def *definition.Definition, backend isolation.Backend, body Body, witnesses *witness.Registry, sinks witness.Sinks) *Instance {
	return &Instance{
		WorkerID:      workerID,
		JourneyID:     journeyID,
		WorkspacePath: workspacePath,
		Definition:    def,
		backend:       backend,
		body:          body,
		witnesses:     witnesses,
		sinks:         sinks,
	}
}

// materialize lazily spawns the isolation boundary on first use.
func (i *Instance) materialize(ctx context.Context) (isolation.Handle, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.handle != nil {
		return *i.handle, nil
	}
	readOnly := i.Definition.TrustLevel == definition.Sandboxed || i.Definition.TrustLevel == definition.Restricted
	h, err := i.backend.Spawn(ctx, i.JourneyID, i.WorkspacePath, i.Definition.Runtime.Container, readOnly)
	if err != nil {
		return isolation.Handle{}, err
	}
	i.handle = &h
	return h, nil
}

func (i *Instance) State(ctx context.Context) (map[string]any, error) {
	return i.body.State(ctx, i.WorkspacePath)
}

func (i *Instance) Pressure(ctx context.Context) (float64, error) { return i.body.Pressure(ctx) }

func (i *Instance) Constraints(ctx context.Context) ([]Constraint, error) {
	out := make([]Constraint, 0, len(i.Definition.Constraints))
	for _, c := range i.Definition.Constraints {
		out = append(out, Constraint{
			ConstraintID:    c.ConstraintID,
			WitnessID:       c.Witness,
			Value:           c.Value,
			FeedbackChannel: FeedbackChannel(c.Feedback),
		})
	}
	return out, nil
}

func (i *Instance) Flow(ctx context.Context, flowCtx map[string]any) ([]FlowOption, error) {
	return i.body.Flow(ctx, flowCtx)
}

// Void runs the witness of every constraint in the worker's definition
// against action before the worker's own prediction, merging resulting
// warnings into the VoidResult per
// WITNESS_AUTOMATION (spec §4.J). A witness-execution error is recorded
// but does not abort the remaining witnesses.
func (i *Instance) Void(ctx context.Context, action Action) (VoidResult, error) {
	var warnings []Warning
	for _, c := range i.Definition.Constraints {
		w, err := i.witnesses.Get(c.Witness)
		if err != nil {
			warnings = append(warnings, Warning{ConstraintID: c.ConstraintID, WitnessID: c.Witness, Message: "witness execution error: " + err.Error()})
			continue
		}
		found, err := w(ctx, action, c.Value)
		if err != nil {
			warnings = append(warnings, Warning{ConstraintID: c.ConstraintID, WitnessID: c.Witness, Message: "witness execution error: " + err.Error()})
			continue
		}
		for _, fw := range found {
			warning := Warning{ConstraintID: c.ConstraintID, WitnessID: c.Witness, Message: fw.Message}
			warnings = append(warnings, warning)
			i.sinks.Route(ctx, c.Feedback, witness.Violation{
				WorkerID:     i.WorkerID,
				ConstraintID: c.ConstraintID,
				ActionType:   fmt.Sprintf("%v", action["type"]),
				Warnings:     []witness.Warning{{Message: fw.Message}},
				Timestamp:    time.Now().Unix(),
			})
		}
	}

	var h isolation.Handle
	if i.handle != nil {
		h = *i.handle
	}
	result, err := i.body.Predict(ctx, action, h)
	if err != nil {
		return VoidResult{}, err
	}
	if result.SideEffectOccurred {
		return VoidResult{}, fmt.Errorf("%w: void reported a side effect", errs.ErrWitnessContract)
	}
	result.Warnings = append(warnings, result.Warnings...)
	return result, nil
}

// Execute lazily materialises the isolation boundary and delegates to the
// worker's Act body, enforcing the success⇒side-effect honesty contract.
func (i *Instance) Execute(ctx context.Context, action Action) (ExecuteResult, error) {
	h, err := i.materialize(ctx)
	if err != nil {
		return ExecuteResult{}, err
	}
	result, err := i.body.Act(ctx, action, h)
	if err != nil {
		return ExecuteResult{}, err
	}
	if result.Success && !result.SideEffectOccurred {
		return ExecuteResult{}, fmt.Errorf("%w: execute succeeded without a side effect", errs.ErrExecuteContract)
	}
	return result, nil
}

func (i *Instance) Evolve(ctx context.Context, feedback map[string]any) error {
	return i.body.Evolve(ctx, feedback)
}

// cleanup releases the isolation boundary, idempotently.
func (i *Instance) cleanup(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.handle == nil {
		return nil
	}
	err := i.backend.Kill(ctx, *i.handle)
	i.handle = nil
	return err
}

var _ Protocol = (*Instance)(nil)
