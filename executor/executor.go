// Package executor implements the façade that ties configuration loading,
// graph resolution, agent injection, scheduler execution, and output
// sanitisation together into a single execute(path, input, thread_id?)
// call, per spec §4.F.
package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/langgraph-go/runtime/checkpoint"
	"github.com/langgraph-go/runtime/config"
	"github.com/langgraph-go/runtime/errs"
	"github.com/langgraph-go/runtime/graph"
	"github.com/langgraph-go/runtime/observability"
	"github.com/langgraph-go/runtime/provider"
)

// WorkflowLoader resolves an opaque workflow path into an uncompiled
// graph builder plus its schema and optional agent-injection config. The
// runtime core never reads or imports user workflow files itself — that
// is the collaborator's job (spec §9, "runtime-time code loading").
type WorkflowLoader interface {
	Load(ctx context.Context, path string) (*graph.Builder, *AgentConfig, error)
}

// AgentConfig is the declarative agent-injection request a workflow module
// attaches alongside its graph, per spec §4.F.
type AgentConfig struct {
	Agents []AgentSpec
}

// AgentSpec describes one agent node to splice into the caller's graph.
type AgentSpec struct {
	Role         string
	ProviderName string // "chat_endpoint" or "cli_subprocess"
	Task         string
	InjectAfter  string
	InjectBefore string // optional; defaults to END
}

// ProviderFactory resolves a provider name into a concrete provider.Provider.
type ProviderFactory func(name string) (provider.Provider, error)

// Executor is the F component: it owns the loader, provider factory,
// tracer, logger, and sanitizer used across every execute() call.
type Executor struct {
	Loader          WorkflowLoader
	Providers       ProviderFactory
	Tracer          *observability.Tracer
	Logger          observability.Logger
	Sanitizer       *observability.Sanitizer
	RuntimeVersion  string
	Environment     string
}

// New builds an Executor with sane nil-safe defaults for the ambient
// pieces, mirroring graph.Scheduler's permissive construction.
func New(loader WorkflowLoader, providers ProviderFactory) *Executor {
	return &Executor{
		Loader:         loader,
		Providers:      providers,
		Tracer:         observability.NewTracer(nil),
		Logger:         observability.NoopLogger{},
		Sanitizer:      observability.NewSanitizer(),
		RuntimeVersion: "dev",
		Environment:    "development",
	}
}

// Execute loads path, splices any configured agent nodes, compiles
// against a checkpointer, runs the graph, and returns the sanitised final
// state. threadID defaults to "default" when empty.
func (e *Executor) Execute(ctx context.Context, path string, input graph.State, threadID string, cp graph.Checkpointer) (graph.State, error) {
	if threadID == "" {
		threadID = "default"
	}
	if cp == nil {
		return nil, fmt.Errorf("%w: no checkpointer configured", errs.ErrStoreUnavailable)
	}

	builder, agentCfg, err := e.Loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrModuleLoad, err)
	}
	if builder == nil {
		return nil, errs.ErrNoGraph
	}

	agentPresent := agentCfg != nil && len(agentCfg.Agents) > 0
	if agentPresent {
		if err := e.inject(builder, agentCfg); err != nil {
			return nil, err
		}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ctx, span := e.Tracer.RootSpan(ctx, stem, observability.Metadata{
		WorkflowName:   stem,
		Environment:    e.Environment,
		WorkflowPath:   path,
		RuntimeVersion: e.RuntimeVersion,
	}, agentPresent)
	defer span.End()

	compiled, err := builder.Compile(cp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrNoGraph, err)
	}
	for _, w := range compiled.Warnings {
		e.Logger.Log(ctx, observability.LogEvent{Level: observability.LevelWarn, Source: "executor", Msg: w})
	}

	sched := graph.NewScheduler(compiled).WithTracer(e.Tracer).WithLogger(e.Logger)
	final, err := sched.Run(ctx, threadID, input)
	if err != nil {
		return nil, fmt.Errorf("execution failed: %w", err)
	}

	sanitized := e.Sanitizer.Sanitize(map[string]any(final))
	out, _ := sanitized.Value.(map[string]any)
	return graph.State(out), nil
}

// inject implements the agent injection algorithm (spec §4.F): for each
// agent spec, build the provider node under name "{role}_agent" and wire
// inject_after -> {role}_agent -> (inject_before | END).
func (e *Executor) inject(b *graph.Builder, cfg *AgentConfig) error {
	for _, spec := range cfg.Agents {
		p, err := e.Providers(spec.ProviderName)
		if err != nil {
			return fmt.Errorf("%w: %s", errs.ErrUnknownProvider, spec.ProviderName)
		}
		nodeName := spec.Role + "_agent"
		node := provider.Node(spec.Role, p, spec.Task, provider.Config{Role: spec.Role})
		b.AddAgentNode(nodeName, node)
		b.AddEdge(spec.InjectAfter, nodeName)
		if spec.InjectBefore != "" {
			b.AddEdge(nodeName, spec.InjectBefore)
		} else {
			b.AddEdge(nodeName, graph.End)
		}
	}
	return nil
}

// OpenCheckpointer builds the canonical production checkpointer from a
// config.CheckpointerConfig: a Resilient wrapper around SQL with a KV
// fallback when kind=resilient or kind=sql with a fallback_dsn set;
// otherwise the bare back-end the config names.
func OpenCheckpointer(cfg config.CheckpointerConfig, logger observability.Logger) (graph.Checkpointer, error) {
	switch cfg.Kind {
	case "memory":
		return checkpoint.NewMemory(), nil
	case "kv":
		return checkpoint.OpenKV(cfg.DSN)
	case "sql":
		sqlStore, err := checkpoint.OpenSQL(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if cfg.FallbackDSN == "" {
			return sqlStore, nil
		}
		return checkpoint.NewResilient(sqlStore, cfg.FallbackDSN, logger)
	case "resilient":
		sqlStore, err := checkpoint.OpenSQL(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return checkpoint.NewResilient(sqlStore, cfg.FallbackDSN, logger)
	default:
		return nil, fmt.Errorf("%w: unknown checkpointer kind %s", errs.ErrStoreUnavailable, cfg.Kind)
	}
}
