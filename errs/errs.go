// Package errs defines the error taxonomy shared by every runtime component.
//
// Errors fall into four families, mirroring how the scheduler and executor
// decide whether to retry, surface, or crash:
//   - configuration/programmer errors (ModuleLoad, NoGraph, UnknownProvider,
//     UnknownField, DuplicateWrite, RouterLabel): surfaced immediately, never
//     retried.
//   - external errors (ProviderTimeout, ProviderFailure, ProviderResponse):
//     surfaced to the caller; retries are caller-driven.
//   - store errors (StoreRetryable, StoreUnavailable): the resilient
//     checkpointer wrapper retries the former and degrades to its fallback
//     once retries are exhausted; the latter is fatal and never retried.
//   - worker-factory / definition / contract errors.
package errs

import "fmt"

// Sentinel errors. Use errors.Is to classify; wrap with fmt.Errorf("%w: ...")
// to attach context.
var (
	// ErrModuleLoad indicates a workflow module could not be loaded.
	ErrModuleLoad = fmt.Errorf("module load failed")
	// ErrNoGraph indicates a loaded module exported no graph.
	ErrNoGraph = fmt.Errorf("no exported graph")
	// ErrUnknownProvider indicates agent injection referenced an unregistered provider.
	ErrUnknownProvider = fmt.Errorf("unknown agent provider")
	// ErrUnknownField indicates a node returned a field absent from the schema.
	ErrUnknownField = fmt.Errorf("unknown field")
	// ErrDuplicateWrite indicates two nodes wrote the same LastValue field in one super-step.
	ErrDuplicateWrite = fmt.Errorf("duplicate write to LastValue field")
	// ErrRouterLabel indicates a conditional router returned a label absent from its map.
	ErrRouterLabel = fmt.Errorf("router returned unmapped label")

	// ErrProviderTimeout indicates an agent provider exceeded its deadline.
	ErrProviderTimeout = fmt.Errorf("provider timeout")
	// ErrProviderFailure indicates an agent provider transport failed (non-zero exit, network error).
	ErrProviderFailure = fmt.Errorf("provider failure")
	// ErrProviderResponse indicates an agent provider returned a malformed response.
	ErrProviderResponse = fmt.Errorf("provider response malformed")

	// ErrStoreRetryable indicates a transient checkpoint write failure.
	ErrStoreRetryable = fmt.Errorf("checkpoint store transient failure")
	// ErrStoreUnavailable indicates the checkpoint store could not be opened, even in fallback.
	ErrStoreUnavailable = fmt.Errorf("checkpoint store unavailable")

	// ErrJourneyCollision indicates a worker was already spawned for a journey.
	ErrJourneyCollision = fmt.Errorf("journey collision")
	// ErrUnknownJourney indicates no live worker exists for a journey.
	ErrUnknownJourney = fmt.Errorf("unknown journey")
	// ErrIsolationFailure indicates the isolation back-end could not materialise a worker's boundary.
	ErrIsolationFailure = fmt.Errorf("isolation failure")

	// ErrDefinitionImpure indicates a worker definition contains a forbidden pattern or construct.
	ErrDefinitionImpure = fmt.Errorf("worker definition impure")
	// ErrDefinitionMalformed indicates a worker definition failed structural or semantic validation.
	ErrDefinitionMalformed = fmt.Errorf("worker definition malformed")

	// ErrWitnessContract indicates void() reported a side effect; a worker implementation bug.
	ErrWitnessContract = fmt.Errorf("witness contract violated: void reported a side effect")
	// ErrExecuteContract indicates execute() reported success without a side effect; a worker implementation bug.
	ErrExecuteContract = fmt.Errorf("execute contract violated: success without side effect")
)

// NodeError attaches the originating node id to an execution failure so the
// executor can surface it alongside the underlying cause.
type NodeError struct {
	NodeID string
	Cause  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %v", e.NodeID, e.Cause)
}

func (e *NodeError) Unwrap() error { return e.Cause }

// DuplicateWriteError names the field and contributing node ids for a
// LastValue conflict within one super-step.
type DuplicateWriteError struct {
	Field    string
	NodeIDs  []string
}

func (e *DuplicateWriteError) Error() string {
	return fmt.Sprintf("%v: field %q written by %v", ErrDuplicateWrite, e.Field, e.NodeIDs)
}

func (e *DuplicateWriteError) Unwrap() error { return ErrDuplicateWrite }

// UnknownFieldError names the offending field and node.
type UnknownFieldError struct {
	Field  string
	NodeID string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%v: node %q returned field %q not present in schema", ErrUnknownField, e.NodeID, e.Field)
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }

// RouterLabelError names the router's source node and the unmapped label it produced.
type RouterLabelError struct {
	NodeID string
	Label  string
}

func (e *RouterLabelError) Error() string {
	return fmt.Sprintf("%v: node %q router returned label %q", ErrRouterLabel, e.NodeID, e.Label)
}

func (e *RouterLabelError) Unwrap() error { return ErrRouterLabel }
