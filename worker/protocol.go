// Package worker hosts isolated worker instances gated by simulate-then-
// execute (void/execute) semantics and automatically enforced witness
// constraints, grounded on the registry pattern in
// tailored-agentic-units-kernel/agent/registry.go.
package worker

import "context"

// Action is an opaque, worker-defined description of a proposed or
// performed operation. Witnesses and the worker's own void/execute bodies
// interpret it by convention (e.g. a "type" key).
type Action map[string]any

// VoidResult is the outcome of a pure prediction. SideEffectOccurred must
// always be false; callers that observe true have found a contract
// violation (errs.ErrWitnessContract).
type VoidResult struct {
	Prediction        string
	SideEffectOccurred bool
	Warnings          []Warning
}

// ExecuteResult is the outcome of a side-effecting action. Success==true
// implies SideEffectOccurred==true (errs.ErrExecuteContract otherwise).
type ExecuteResult struct {
	Success            bool
	SideEffectOccurred bool
	Output             string
	Err                error
}

// Warning is a single witness or constraint finding attached to a
// VoidResult.
type Warning struct {
	ConstraintID string
	WitnessID    string
	Message      string
}

// FlowOption is one admissible action the worker reports via Flow.
type FlowOption struct {
	Action        Action
	EstimatedCost float64
	Prerequisites []string
}

// Protocol is the seven-operation contract every worker implementation
// satisfies.
type Protocol interface {
	State(ctx context.Context) (map[string]any, error)
	Pressure(ctx context.Context) (float64, error)
	Constraints(ctx context.Context) ([]Constraint, error)
	Flow(ctx context.Context, flowCtx map[string]any) ([]FlowOption, error)
	Void(ctx context.Context, action Action) (VoidResult, error)
	Execute(ctx context.Context, action Action) (ExecuteResult, error)
	Evolve(ctx context.Context, feedback map[string]any) error
}

// Constraint binds a witness to a value and a feedback channel, per spec §6.
type Constraint struct {
	ConstraintID    string
	WitnessID       string
	Value           any
	FeedbackChannel FeedbackChannel
}

// FeedbackChannel selects where constraint violations are reported.
type FeedbackChannel string

const (
	FeedbackAlertDashboard FeedbackChannel = "alert_dashboard"
	FeedbackLog            FeedbackChannel = "log"
	FeedbackEmail          FeedbackChannel = "email"
)
