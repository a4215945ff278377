package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/langgraph-go/runtime/errs"
	"github.com/langgraph-go/runtime/graph"
)

// CLI is the CLI-subprocess Provider: it shells out to an agent CLI binary
// (or, when Container is set, runs it inside a container via docker exec)
// once per call, passing the task on stdin and the resume hint as a
// "--resume <session_id>" flag, and parsing a single JSON object from
// stdout, grounded on original_source/lgp/agents/claude_code_provider.py.
type CLI struct {
	// Command is the binary to invoke, e.g. "claude".
	Command string
	// Args are extra flags appended after Command, before any --resume flag.
	Args []string
	// Container, if set, routes the call through "docker exec -i <Container>
	// <Command> <Args...>" instead of a bare subprocess.
	Container string

	pricing PriceTable
}

// NewCLI builds a CLI provider invoking command directly on the host.
func NewCLI(command string, args ...string) *CLI {
	return &CLI{Command: command, Args: args, pricing: DefaultPriceTable()}
}

// InContainer returns a copy of c that runs inside the named container.
func (c *CLI) InContainer(name string) *CLI {
	cp := *c
	cp.Container = name
	return &cp
}

func (c *CLI) Name() string { return "cli_subprocess" }

func (c *CLI) Metadata() map[string]string {
	meta := map[string]string{"command": c.Command}
	if c.Container != "" {
		meta["container"] = c.Container
	}
	return meta
}

func (c *CLI) EstimateCost(inTokens, outTokens int) float64 {
	return c.pricing.Estimate(string(VendorAnthropic), inTokens, outTokens)
}

// cliResponse is the single JSON object a conforming CLI agent writes to
// stdout, per spec §4.G.
type cliResponse struct {
	Content       string  `json:"result"`
	SessionID     string  `json:"session_id"`
	Cost          float64 `json:"total_cost_usd"`
	Turns         int     `json:"num_turns"`
	DurationMs    int64   `json:"duration_ms"`
	DurationAPIMs int64   `json:"duration_api_ms"`
}

// ExecuteTask runs the configured command with an overall deadline of
// cfg.MaxTurns * cfg.TimeoutPerTurn seconds (defaulting to a single
// 120s turn when unset), passing the prior session id as a resume flag.
func (c *CLI) ExecuteTask(ctx context.Context, task string, state graph.State, cfg Config) (graph.PartialUpdate, error) {
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 1
	}
	perTurn := cfg.TimeoutPerTurn
	if perTurn <= 0 {
		perTurn = 120
	}
	deadline := time.Duration(maxTurns*perTurn) * time.Second

	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	prior := PriorSessionID(cfg.Role, state)
	args := append([]string{}, c.Args...)
	if prior != "" {
		args = append(args, "--resume", prior)
	}

	name, fullArgs := c.command(args)
	cmd := exec.CommandContext(ctx, name, fullArgs...)
	cmd.Stdin = bytes.NewBufferString(task)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrProviderTimeout, ctx.Err())
	}
	if runErr != nil {
		return nil, fmt.Errorf("%w: %v: %s", errs.ErrProviderFailure, runErr, stderr.String())
	}

	var resp cliResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrProviderResponse, err)
	}

	usage := TokenUsage{
		Cost:          resp.Cost,
		Turns:         resp.Turns,
		DurationMs:    resp.DurationMs,
		DurationAPIMs: resp.DurationAPIMs,
	}
	if usage.DurationMs == 0 {
		usage.DurationMs = time.Since(start).Milliseconds()
	}
	sessionID := resp.SessionID
	if sessionID == "" {
		sessionID = prior
	}
	return buildUpdate(cfg.Role, sessionID, Response{Content: resp.Content}, usage), nil
}

// command returns the binary name and full argument list, routing through
// "docker exec -i <container>" when Container is set.
func (c *CLI) command(args []string) (string, []string) {
	if c.Container == "" {
		return c.Command, args
	}
	full := append([]string{"exec", "-i", c.Container, c.Command}, args...)
	return "docker", full
}

var _ Provider = (*CLI)(nil)
