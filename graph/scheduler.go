package graph

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/langgraph-go/runtime/errs"
	"github.com/langgraph-go/runtime/observability"
)

// Scheduler drives a CompiledGraph's super-step loop (spec §4.C): dispatch
// the frontier concurrently, barrier on completion, compose the result,
// checkpoint, compute the next frontier, repeat until the frontier is empty.
type Scheduler struct {
	graph   *CompiledGraph
	opts    Options
	tracer  *observability.Tracer
	logger  observability.Logger
}

// NewScheduler creates a Scheduler for graph with the given options.
func NewScheduler(g *CompiledGraph, opts ...Option) *Scheduler {
	var o Options
	for _, apply := range opts {
		apply(&o)
	}
	return &Scheduler{graph: g, opts: o, logger: observability.NoopLogger{}}
}

// WithTracer attaches a tracer for node/workflow spans; returns the
// Scheduler for chaining.
func (s *Scheduler) WithTracer(t *observability.Tracer) *Scheduler {
	s.tracer = t
	return s
}

// WithLogger attaches a structured logger; returns the Scheduler for
// chaining.
func (s *Scheduler) WithLogger(l observability.Logger) *Scheduler {
	if l != nil {
		s.logger = l
	}
	return s
}

// Run executes the graph for threadID starting from initial state input,
// persisting a checkpoint after every super-step. It resumes from the
// thread's head checkpoint when one exists and input is empty, per the
// resume-equivalence invariant (spec §8).
func (s *Scheduler) Run(ctx context.Context, threadID string, input State) (State, error) {
	state, frontier, parentID, err := s.resumeOrStart(ctx, threadID, input)
	if err != nil {
		return nil, err
	}

	steps := 0
	for len(frontier) > 0 {
		if s.opts.MaxSteps > 0 && steps >= s.opts.MaxSteps {
			return nil, ErrMaxStepsExceeded
		}
		select {
		case <-ctx.Done():
			return nil, ErrCancelled
		default:
		}

		updates, writes, err := s.dispatch(ctx, frontier, state)
		if err != nil {
			return nil, err
		}

		newState, err := compose(s.graph.schema, state, updates)
		if err != nil {
			if dup, ok := err.(*errs.DuplicateWriteError); ok {
				s.opts.Metrics.recordDuplicateWrite()
				return nil, dup
			}
			return nil, err
		}
		state = newState

		nextFrontier, err := s.nextFrontier(frontier, state)
		if err != nil {
			return nil, err
		}

		cp := Checkpoint{
			ThreadID:      threadID,
			ParentID:      parentID,
			Ts:            time.Now(),
			ChannelValues: state,
			PendingWrites: writes,
			NextNodes:     nextFrontier,
		}
		id, err := s.graph.checkpoint.Put(ctx, threadID, parentID, cp)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
		}
		if err := s.graph.checkpoint.PutWrites(ctx, threadID, id, writes); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
		}
		parentID = id
		s.opts.Metrics.recordCheckpointWrite()
		s.opts.Metrics.recordSuperStep()

		frontier = nextFrontier
		steps++
	}
	return state, nil
}

// resumeOrStart decides whether to start fresh from input or resume from the
// thread's head checkpoint, per the resume-equivalence invariant (spec §8):
// starting a new execution on an existing thread_id with empty input is
// equivalent to continuing from the head checkpoint.
func (s *Scheduler) resumeOrStart(ctx context.Context, threadID string, input State) (State, []string, string, error) {
	if len(input) > 0 {
		return input, []string{s.graph.entry}, "", nil
	}
	head, err := s.graph.checkpoint.GetLatest(ctx, threadID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	if head == nil {
		return State{}, []string{s.graph.entry}, "", nil
	}
	return head.ChannelValues, head.NextNodes, head.ID, nil
}

// dispatch runs every node in frontier concurrently against a read-only
// snapshot of state, and awaits all of them at the barrier. Suspension
// occurs only here and inside user node bodies; composition afterward is
// always serial.
func (s *Scheduler) dispatch(ctx context.Context, frontier []string, state State) ([]nodeUpdate, []Write, error) {
	snapshot := state.Clone()
	results := make([]nodeUpdate, len(frontier))
	writesPerNode := make([][]Write, len(frontier))

	grp, gctx := errgroup.WithContext(ctx)
	for i, nodeID := range frontier {
		i, nodeID := i, nodeID
		node, ok := s.graph.nodes[nodeID]
		if !ok {
			return nil, nil, fmt.Errorf("graph: frontier node %q not defined", nodeID)
		}
		grp.Go(func() error {
			nctx := gctx
			cancel := func() {}
			if s.opts.NodeTimeout > 0 {
				nctx, cancel = context.WithTimeout(gctx, s.opts.NodeTimeout)
			}
			defer cancel()

			nctx, spanHandle := s.tracer.NodeSpan(nctx, nodeID)

			start := time.Now()
			update, err := node.Fn(nctx, snapshot)
			s.opts.Metrics.recordNodeDuration(nodeID, time.Since(start).Seconds())
			spanHandle.End()
			if err != nil {
				return &errs.NodeError{NodeID: nodeID, Cause: err}
			}
			results[i] = nodeUpdate{nodeID: nodeID, update: update}
			if len(update) > 0 {
				writes := make([]Write, 0, len(update))
				for field, val := range update {
					writes = append(writes, Write{TaskID: nodeID, Channel: field, Value: val})
				}
				writesPerNode[i] = writes
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, nil, err
	}

	var allWrites []Write
	for _, w := range writesPerNode {
		allWrites = append(allWrites, w...)
	}
	return results, allWrites, nil
}

// nextFrontier computes, for every node in the just-dispatched frontier, its
// successors: all unconditional edges, plus the conditional edge's labelled
// target (router evaluated against the new, post-barrier state). END
// successors are dropped, terminating that branch.
func (s *Scheduler) nextFrontier(frontier []string, state State) ([]string, error) {
	seen := make(map[string]bool)
	var next []string
	add := func(name string) {
		if name == End || seen[name] {
			return
		}
		seen[name] = true
		next = append(next, name)
	}

	for _, nodeID := range frontier {
		for _, to := range s.graph.edges[nodeID] {
			add(to)
		}
		if ce, ok := s.graph.conditional[nodeID]; ok {
			label := ce.router(state)
			to, ok := ce.labels[label]
			if !ok {
				return nil, &errs.RouterLabelError{NodeID: nodeID, Label: label}
			}
			add(to)
		}
	}
	return next, nil
}
