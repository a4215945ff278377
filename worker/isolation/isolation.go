// Package isolation implements the pluggable execution-boundary back-ends
// a worker instance materialises on first execute(): a container back-end
// and a plain process back-end, per spec §4.K.
package isolation

import "context"

// Handle opaquely identifies a materialised isolation boundary.
type Handle struct {
	JourneyID string
	Backend   string
}

// ExecResult is the outcome of running a command inside a Handle.
type ExecResult struct {
	ExitCode int
	Output   string
}

// Status reports whether a Handle's boundary is still alive.
type Status struct {
	Alive bool
	Info  string
}

// Backend is the isolation contract. Both back-ends must be idempotent on
// Kill.
type Backend interface {
	Spawn(ctx context.Context, journeyID, workspacePath, image string, readOnly bool) (Handle, error)
	Exec(ctx context.Context, h Handle, command []string, workdir string, timeout int) (ExecResult, error)
	CopyIn(ctx context.Context, h Handle, src, dst string) error
	Status(ctx context.Context, h Handle) (Status, error)
	Kill(ctx context.Context, h Handle) error
}
