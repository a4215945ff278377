// Package graph provides the core graph execution engine: typed channels,
// super-step scheduling, conditional routing, and checkpoint-backed
// resumption.
package graph

import (
	"fmt"
	"sort"

	"github.com/langgraph-go/runtime/errs"
)

// Reducer determines how concurrent writers to the same field merge their
// contributions within a super-step.
type Reducer int

const (
	// LastValue keeps the single writer's value. More than one writer to the
	// same LastValue field in a super-step is a fatal DuplicateWrite.
	LastValue Reducer = iota
	// Append concatenates every writer's value, in ascending node-id order.
	// The field's value must be a []any (or a slice that compose can append to).
	Append
)

// FieldSpec declares a channel: the (field, reducer) pair from spec §3.
type FieldSpec struct {
	Name    string
	Reducer Reducer
}

// Schema is the set of channels a graph's state is composed of. Writers may
// only touch fields present in the schema.
type Schema map[string]FieldSpec

// NewSchema builds a Schema from field specs, keyed by name.
func NewSchema(fields ...FieldSpec) Schema {
	s := make(Schema, len(fields))
	for _, f := range fields {
		s[f.Name] = f
	}
	return s
}

// State is the mapping from field name to value threaded through a graph
// execution. The scheduler never mutates a State in place; compose always
// returns a new one.
type State map[string]any

// Clone returns a shallow copy of the state, suitable for handing a
// read-only-in-spirit snapshot to a node.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// PartialUpdate is the subset of fields a node's invocation chooses to write.
// A nil or empty PartialUpdate is a no-op and never triggers DuplicateWrite.
type PartialUpdate map[string]any

// nodeUpdate pairs a partial update with the node id that produced it, for
// deterministic composition ordering.
type nodeUpdate struct {
	nodeID string
	update PartialUpdate
}

// compose merges the updates produced by one super-step's dispatched nodes
// into a new State, per spec §4.A:
//  1. group updates by field
//  2. for each field, look up the reducer; LastValue with >1 writer is a
//     DuplicateWrite naming the contributing node ids; Append concatenates in
//     ascending node-id order
//  3. fields untouched by any writer are carried over unchanged
func compose(schema Schema, current State, updates []nodeUpdate) (State, error) {
	// sort updates by node id so Append composition is deterministic
	// regardless of dispatch/completion order.
	sorted := make([]nodeUpdate, len(updates))
	copy(sorted, updates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].nodeID < sorted[j].nodeID })

	writers := make(map[string][]nodeUpdate)
	for _, u := range sorted {
		for field := range u.update {
			writers[field] = append(writers[field], u)
		}
	}

	next := current.Clone()
	for field, contributors := range writers {
		spec, ok := schema[field]
		if !ok {
			return nil, &errs.UnknownFieldError{Field: field, NodeID: contributors[0].nodeID}
		}
		switch spec.Reducer {
		case LastValue:
			if len(contributors) > 1 {
				ids := make([]string, len(contributors))
				for i, c := range contributors {
					ids[i] = c.nodeID
				}
				return nil, &errs.DuplicateWriteError{Field: field, NodeIDs: ids}
			}
			next[field] = contributors[0].update[field]
		case Append:
			merged := appendValues(current[field], contributors, field)
			next[field] = merged
		default:
			return nil, fmt.Errorf("field %q: unknown reducer %v", field, spec.Reducer)
		}
	}
	return next, nil
}

// appendValues concatenates every contributor's value for field, in the
// order contributors is already sorted (ascending node id), prefixed by
// whatever was already accumulated.
func appendValues(existing any, contributors []nodeUpdate, field string) []any {
	var out []any
	if existing != nil {
		out = append(out, existing.([]any)...)
	}
	for _, c := range contributors {
		v := c.update[field]
		if vs, ok := v.([]any); ok {
			out = append(out, vs...)
		} else {
			out = append(out, v)
		}
	}
	return out
}
