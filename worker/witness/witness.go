// Package witness implements the platform-run constraint predicates that
// a worker Instance automatically invokes on every void() call, per spec
// §4.J (WITNESS_AUTOMATION).
package witness

import "context"

// Warning is one finding a Witness attaches to a void() prediction.
type Warning struct {
	Message string
}

// Witness observes a proposed action against a constraint value and
// returns zero or more warnings. Witnesses do not act on the worker or its
// workspace, and only void() results carry their output; a witness may keep
// its own bookkeeping (the search rate limiter records recent calls).
type Witness func(ctx context.Context, action map[string]any, value any) ([]Warning, error)
