package witness

import (
	"fmt"
	"sync"

	"github.com/langgraph-go/runtime/errs"
)

// Registry maps witness_id to its Witness, grounded on the
// tailored-agentic-units-kernel agent.Registry read/write-locked map
// pattern.
type Registry struct {
	mu       sync.RWMutex
	witnesses map[string]Witness
}

// NewRegistry returns a Registry pre-populated with the built-in witnesses.
func NewRegistry() *Registry {
	r := &Registry{witnesses: make(map[string]Witness)}
	for id, w := range builtins() {
		r.witnesses[id] = w
	}
	return r
}

// Register adds or replaces a named witness.
func (r *Registry) Register(id string, w Witness) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.witnesses[id] = w
}

// Has reports whether id is registered, satisfying
// definition.WitnessResolver.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.witnesses[id]
	return ok
}

// Get returns the witness registered under id.
func (r *Registry) Get(id string) (Witness, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.witnesses[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownField, id)
	}
	return w, nil
}
