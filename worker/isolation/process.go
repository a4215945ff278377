package isolation

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/langgraph-go/runtime/errs"
)

// Process is the no-container isolation back-end: the worker executes
// in-process with a dedicated workspace directory on the host filesystem.
type Process struct {
	mu         sync.Mutex
	workspaces map[string]string // journey_id -> workspace path
	killed     map[string]bool
}

// NewProcess returns a ready Process back-end.
func NewProcess() *Process {
	return &Process{workspaces: make(map[string]string), killed: make(map[string]bool)}
}

func (p *Process) Spawn(ctx context.Context, journeyID, workspacePath, image string, readOnly bool) (Handle, error) {
	if err := os.MkdirAll(workspacePath, 0o755); err != nil {
		return Handle{}, fmt.Errorf("%w: mkdir workspace: %v", errs.ErrIsolationFailure, err)
	}
	p.mu.Lock()
	p.workspaces[journeyID] = workspacePath
	delete(p.killed, journeyID)
	p.mu.Unlock()
	return Handle{JourneyID: journeyID, Backend: "process"}, nil
}

func (p *Process) Exec(ctx context.Context, h Handle, command []string, workdir string, timeout int) (ExecResult, error) {
	if len(command) == 0 {
		return ExecResult{}, fmt.Errorf("%w: empty command", errs.ErrIsolationFailure)
	}
	if timeout <= 0 {
		timeout = 60
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	if workdir != "" {
		cmd.Dir = workdir
	} else {
		p.mu.Lock()
		cmd.Dir = p.workspaces[h.JourneyID]
		p.mu.Unlock()
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return ExecResult{}, fmt.Errorf("%w: %v", errs.ErrIsolationFailure, err)
		}
	}
	return ExecResult{ExitCode: exitCode, Output: stdout.String() + stderr.String()}, nil
}

func (p *Process) CopyIn(ctx context.Context, h Handle, src, dst string) error {
	p.mu.Lock()
	ws := p.workspaces[h.JourneyID]
	p.mu.Unlock()
	target := dst
	if dst == "" {
		return fmt.Errorf("%w: empty destination", errs.ErrIsolationFailure)
	}
	if !os.IsPathSeparator(dst[0]) {
		target = ws + string(os.PathSeparator) + dst
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("%w: read src: %v", errs.ErrIsolationFailure, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("%w: write dst: %v", errs.ErrIsolationFailure, err)
	}
	return nil
}

func (p *Process) Status(ctx context.Context, h Handle) (Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.killed[h.JourneyID] {
		return Status{Alive: false}, nil
	}
	_, ok := p.workspaces[h.JourneyID]
	return Status{Alive: ok}, nil
}

// Kill marks the workspace inactive; it does not delete the directory, so
// repeated calls remain idempotent and audit artifacts survive.
func (p *Process) Kill(ctx context.Context, h Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killed[h.JourneyID] = true
	return nil
}

var _ Backend = (*Process)(nil)
