package isolation

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/langgraph-go/runtime/errs"
)

// Container is the docker-exec-based isolation back-end. It bind-mounts
// workspacePath to /workspace read-write, optionally makes the root
// filesystem read-only, gives a writable tmpfs at /tmp, an isolated
// network namespace, and sets USER_JOURNEY_ID in the container environment.
type Container struct {
	mu       sync.Mutex
	handles  map[string]string // container name -> container name (set of spawned containers)
}

// NewContainer returns a ready Container back-end.
func NewContainer() *Container {
	return &Container{handles: make(map[string]string)}
}

func containerName(journeyID string) string { return "journey-" + journeyID }

func (c *Container) Spawn(ctx context.Context, journeyID, workspacePath, image string, readOnly bool) (Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := containerName(journeyID)
	if _, ok := c.handles[name]; ok {
		return Handle{JourneyID: journeyID, Backend: "container"}, nil
	}

	args := []string{
		"run", "-d", "--name", name,
		"--mount", fmt.Sprintf("type=bind,source=%s,target=/workspace", workspacePath),
		"--tmpfs", "/tmp",
		"--network", "none",
		"-e", "USER_JOURNEY_ID=" + journeyID,
	}
	if readOnly {
		args = append(args, "--read-only")
	}
	args = append(args, image, "sleep", "infinity")

	if out, err := exec.CommandContext(ctx, "docker", args...).CombinedOutput(); err != nil {
		return Handle{}, fmt.Errorf("%w: docker run: %v: %s", errs.ErrIsolationFailure, err, out)
	}
	c.handles[name] = name
	return Handle{JourneyID: journeyID, Backend: "container"}, nil
}

func (c *Container) Exec(ctx context.Context, h Handle, command []string, workdir string, timeout int) (ExecResult, error) {
	if timeout <= 0 {
		timeout = 60
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	args := []string{"exec"}
	if workdir != "" {
		args = append(args, "-w", workdir)
	}
	args = append(args, containerName(h.JourneyID))
	args = append(args, command...)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return ExecResult{}, fmt.Errorf("%w: docker exec: %v", errs.ErrIsolationFailure, err)
		}
	}
	return ExecResult{ExitCode: exitCode, Output: stdout.String() + stderr.String()}, nil
}

func (c *Container) CopyIn(ctx context.Context, h Handle, src, dst string) error {
	target := fmt.Sprintf("%s:%s", containerName(h.JourneyID), dst)
	if out, err := exec.CommandContext(ctx, "docker", "cp", src, target).CombinedOutput(); err != nil {
		return fmt.Errorf("%w: docker cp: %v: %s", errs.ErrIsolationFailure, err, out)
	}
	return nil
}

func (c *Container) Status(ctx context.Context, h Handle) (Status, error) {
	out, err := exec.CommandContext(ctx, "docker", "inspect", "-f", "{{.State.Running}}", containerName(h.JourneyID)).CombinedOutput()
	if err != nil {
		return Status{Alive: false, Info: string(out)}, nil
	}
	return Status{Alive: bytes.Contains(out, []byte("true")), Info: string(out)}, nil
}

// Kill removes the container, ignoring "no such container" so repeated
// calls stay idempotent.
func (c *Container) Kill(ctx context.Context, h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := containerName(h.JourneyID)
	_, _ = exec.CommandContext(ctx, "docker", "rm", "-f", name).CombinedOutput()
	delete(c.handles, name)
	return nil
}

var _ Backend = (*Container)(nil)
