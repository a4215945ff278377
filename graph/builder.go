package graph

import (
	"fmt"
)

// Builder accumulates nodes and edges before Compile binds them to a schema
// and a Checkpointer. It mirrors the teacher's functional-builder style
// generalized from a typed-state graph to the spec's map-based one.
type Builder struct {
	schema      Schema
	nodes       map[string]Node
	edges       map[string][]string // from -> []to, unconditional
	conditional map[string]conditionalEdge
	entry       string
	err         error
}

// NewBuilder creates an empty Builder for the given schema.
func NewBuilder(schema Schema) *Builder {
	return &Builder{
		schema:      schema,
		nodes:       make(map[string]Node),
		edges:       make(map[string][]string),
		conditional: make(map[string]conditionalEdge),
	}
}

// AddNode registers a node under name. Re-registering a name overwrites it.
func (b *Builder) AddNode(name string, fn NodeFunc) *Builder {
	return b.addNode(name, fn, KindUser)
}

// AddAgentNode registers a node of KindAgent; used by agent injection (§4.F).
func (b *Builder) AddAgentNode(name string, fn NodeFunc) *Builder {
	return b.addNode(name, fn, KindAgent)
}

func (b *Builder) addNode(name string, fn NodeFunc, kind Kind) *Builder {
	if b.err != nil {
		return b
	}
	if name == Start || name == End {
		b.err = fmt.Errorf("node name %q is reserved", name)
		return b
	}
	b.nodes[name] = Node{Name: name, Fn: fn, Kind: kind}
	return b
}

// AddEdge adds an unconditional edge from -> to.
func (b *Builder) AddEdge(from, to string) *Builder {
	if b.err != nil {
		return b
	}
	b.edges[from] = append(b.edges[from], to)
	return b
}

// AddConditionalEdges attaches a router to from; the router's return value is
// looked up in labels to pick the successor at runtime.
func (b *Builder) AddConditionalEdges(from string, router Router, labels map[string]string) *Builder {
	if b.err != nil {
		return b
	}
	b.conditional[from] = conditionalEdge{from: from, router: router, labels: labels}
	return b
}

// SetEntry designates the graph's entry node.
func (b *Builder) SetEntry(name string) *Builder {
	if b.err != nil {
		return b
	}
	b.entry = name
	return b
}

// Compile validates the graph and binds it to a Checkpointer, producing a
// CompiledGraph ready for the scheduler. Validation per spec §4.B:
//   - entry is set and exists
//   - every edge target exists (END is always a valid target)
//   - no node is named START or END (enforced at AddNode time)
//
// Reachability does not fail compilation: unreachable nodes, and the absence
// of any path from entry to END, are returned in Warnings for the caller to
// log.
func (b *Builder) Compile(cp Checkpointer) (*CompiledGraph, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.entry == "" {
		return nil, fmt.Errorf("graph: no entry node set")
	}
	if _, ok := b.nodes[b.entry]; !ok && b.entry != Start {
		return nil, fmt.Errorf("graph: entry node %q not defined", b.entry)
	}

	exists := func(name string) bool {
		if name == End || name == Start {
			return true
		}
		_, ok := b.nodes[name]
		return ok
	}
	for from, tos := range b.edges {
		if !exists(from) {
			return nil, fmt.Errorf("graph: edge source %q not defined", from)
		}
		for _, to := range tos {
			if !exists(to) {
				return nil, fmt.Errorf("graph: edge %q -> %q: target not defined", from, to)
			}
		}
	}
	for from, ce := range b.conditional {
		if !exists(from) {
			return nil, fmt.Errorf("graph: conditional edge source %q not defined", from)
		}
		for label, to := range ce.labels {
			if !exists(to) {
				return nil, fmt.Errorf("graph: conditional edge %q label %q -> %q: target not defined", from, label, to)
			}
		}
	}

	warnings := reachabilityWarnings(b)

	g := &CompiledGraph{
		schema:      b.schema,
		nodes:       b.nodes,
		edges:       b.edges,
		conditional: b.conditional,
		entry:       b.entry,
		checkpoint:  cp,
		Warnings:    warnings,
	}
	return g, nil
}

// reachabilityWarnings performs a BFS from entry over both unconditional and
// conditional edges and reports nodes that can never be reached, plus a
// warning if END itself is never reached, per spec §4.B's "at least one
// path from entry leads to END". Neither condition fails compilation;
// both are logged diagnostics only.
func reachabilityWarnings(b *Builder) []string {
	visited := map[string]bool{b.entry: true}
	reachesEnd := false
	queue := []string{b.entry}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, to := range b.edges[cur] {
			if to == End {
				reachesEnd = true
				continue
			}
			if !visited[to] {
				visited[to] = true
				queue = append(queue, to)
			}
		}
		if ce, ok := b.conditional[cur]; ok {
			for _, to := range ce.labels {
				if to == End {
					reachesEnd = true
					continue
				}
				if !visited[to] {
					visited[to] = true
					queue = append(queue, to)
				}
			}
		}
	}
	var warnings []string
	for name := range b.nodes {
		if !visited[name] {
			warnings = append(warnings, fmt.Sprintf("node %q is unreachable from entry %q", name, b.entry))
		}
	}
	if !reachesEnd {
		warnings = append(warnings, fmt.Sprintf("no path from entry %q reaches END; graph may never terminate", b.entry))
	}
	return warnings
}

// CompiledGraph is an immutable, validated graph bound to a Checkpointer.
type CompiledGraph struct {
	schema      Schema
	nodes       map[string]Node
	edges       map[string][]string
	conditional map[string]conditionalEdge
	entry       string

	checkpoint Checkpointer

	// Warnings holds non-fatal compile-time diagnostics (e.g. unreachable nodes).
	Warnings []string
}
