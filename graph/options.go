package graph

import "time"

// Options configures a Scheduler. The zero value is usable: unbounded steps,
// no metrics, no per-node timeout.
type Options struct {
	// MaxSteps caps the number of super-steps a single Run may execute.
	// Zero means unbounded (use with caution; see spec §4.C).
	MaxSteps int

	// NodeTimeout, if non-zero, bounds each node's per-super-step execution.
	// A node exceeding it is cancelled and its NodeFunc error (if any)
	// surfaces as the execution failure for that node.
	NodeTimeout time.Duration

	Metrics *Metrics
}

// Option mutates an Options value. Functional-option style generalized from
// the teacher's engine configuration.
type Option func(*Options)

// WithMaxSteps sets the super-step ceiling.
func WithMaxSteps(n int) Option {
	return func(o *Options) { o.MaxSteps = n }
}

// WithNodeTimeout bounds individual node execution within a super-step.
func WithNodeTimeout(d time.Duration) Option {
	return func(o *Options) { o.NodeTimeout = d }
}

// WithMetrics attaches a *Metrics instance to record scheduler activity.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}
