package graph

import "errors"

// ErrMaxStepsExceeded is returned when execution reaches the configured
// super-step ceiling without the frontier going empty, guarding against
// runaway loops (spec §4.C).
var ErrMaxStepsExceeded = errors.New("execution exceeded maximum super-step limit")

// ErrCancelled is returned when the caller's cancellation token fires at a
// super-step barrier before the next dispatch.
var ErrCancelled = errors.New("execution cancelled")
