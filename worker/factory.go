package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/langgraph-go/runtime/errs"
	"github.com/langgraph-go/runtime/worker/definition"
	"github.com/langgraph-go/runtime/worker/isolation"
	"github.com/langgraph-go/runtime/worker/witness"
)

// BodyFactory builds a worker's domain-specific Body from its Definition.
// Supplied by the host program; the Factory itself is domain-agnostic.
type BodyFactory func(def *definition.Definition) (Body, error)

// Factory owns the journey_id -> *Instance registry, grounded on
// tailored-agentic-units-kernel's agent.Registry lazy-instantiation /
// RWMutex pattern, generalized to the spec's spawn/resume/kill lifecycle
// and JOURNEY_ISOLATION invariant.
type Factory struct {
	mu        sync.Mutex
	instances map[string]*Instance

	backends  map[string]isolation.Backend
	witnesses *witness.Registry
	sinks     witness.Sinks
	newBody   BodyFactory
}

// NewFactory builds a Factory. backends maps isolation-level name
// ("container", "process") to its Backend; newBody mints a worker's
// domain logic from its parsed Definition.
func NewFactory(backends map[string]isolation.Backend, witnesses *witness.Registry, sinks witness.Sinks, newBody BodyFactory) *Factory {
	return &Factory{
		instances: make(map[string]*Instance),
		backends:  backends,
		witnesses: witnesses,
		sinks:     sinks,
		newBody:   newBody,
	}
}

// substitute renders a workspace template for journeyID. "{journey_id}" is
// replaced if present; otherwise the journey id is appended as
// "<template>/<journey_id>", per spec §4.H.
func substitute(template, journeyID string) string {
	if strings.Contains(template, "{journey_id}") {
		return strings.ReplaceAll(template, "{journey_id}", journeyID)
	}
	return template + "/" + journeyID
}

// Spawn creates and registers a worker instance for journeyID from def,
// using the named isolation backend. It rejects with JourneyCollision if
// journeyID already has a live worker.
func (f *Factory) Spawn(ctx context.Context, def *definition.Definition, journeyID, isolationLevel string) (*Instance, error) {
	f.mu.Lock()
	if _, exists := f.instances[journeyID]; exists {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: journey %s", errs.ErrJourneyCollision, journeyID)
	}
	f.mu.Unlock()

	if err := definition.ValidateWithWitnesses(def, f.witnesses); err != nil {
		return nil, err
	}

	backend, ok := f.backends[isolationLevel]
	if !ok {
		return nil, fmt.Errorf("%w: unknown isolation level %s", errs.ErrIsolationFailure, isolationLevel)
	}

	body, err := f.newBody(def)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIsolationFailure, err)
	}

	workspacePath := substitute(def.Runtime.WorkspaceTemplate, journeyID)
	inst := newInstance(def.WorkerID, journeyID, workspacePath, def, backend, body, f.witnesses, f.sinks)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.instances[journeyID]; exists {
		return nil, fmt.Errorf("%w: journey %s", errs.ErrJourneyCollision, journeyID)
	}
	f.instances[journeyID] = inst
	return inst, nil
}

// Resume returns the live worker for journeyID, or UnknownJourney.
func (f *Factory) Resume(journeyID string) (*Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inst, ok := f.instances[journeyID]
	if !ok {
		return nil, fmt.Errorf("%w: journey %s", errs.ErrUnknownJourney, journeyID)
	}
	return inst, nil
}

// Kill removes journeyID's worker from the registry and releases its
// isolation resources idempotently.
func (f *Factory) Kill(ctx context.Context, journeyID string) error {
	f.mu.Lock()
	inst, ok := f.instances[journeyID]
	if ok {
		delete(f.instances, journeyID)
	}
	f.mu.Unlock()
	if !ok {
		return nil
	}
	return inst.cleanup(ctx)
}
