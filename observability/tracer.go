// Package observability implements the workflow/node span pipeline, metadata
// propagation, and output sanitisation described in spec §4.E, grounded on
// the teacher's graph/emit package and backed by OpenTelemetry.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Metadata is propagated on the root span of every execution, per spec §4.E.
type Metadata struct {
	WorkflowName   string
	Environment    string
	WorkflowPath   string
	RuntimeVersion string
}

// Tracer opens spans for an execution and its nodes. A nil *Tracer is valid
// and produces no-op spans, so callers that don't configure observability
// still work.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry TracerProvider. A nil provider uses
// otel.GetTracerProvider(), the globally configured one; pass an SDK
// provider for a dedicated exporter.
func NewTracer(provider trace.TracerProvider) *Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracer{tracer: provider.Tracer("github.com/langgraph-go/runtime")}
}

// RootSpan opens the execution's root span, named after the workflow file
// stem, and attaches metadata and tags per spec §4.E. agentPresent adds the
// "agent-present" tag when the executor spliced in at least one agent node.
func (t *Tracer) RootSpan(ctx context.Context, stem string, md Metadata, agentPresent bool) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("workflow_name", md.WorkflowName),
		attribute.String("environment", md.Environment),
		attribute.String("workflow_path", md.WorkflowPath),
		attribute.String("runtime_version", md.RuntimeVersion),
		attribute.String("platform", "langgraph-go"),
		attribute.String("workflow", md.WorkflowName),
		attribute.String("env", md.Environment),
	}
	if agentPresent {
		attrs = append(attrs, attribute.Bool("agent-present", true))
	}
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, stem, trace.WithAttributes(attrs...))
}

// NodeSpan opens a child span for a single node's execution within a
// super-step.
func (t *Tracer) NodeSpan(ctx context.Context, nodeID string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, nodeID, trace.WithAttributes(attribute.String("node_id", nodeID)))
}

// Flush is a convenience hook for callers holding a concrete SDK
// TracerProvider: it calls tp.ForceFlush, and is a no-op only when tp is
// nil. The Tracer facade itself holds nothing to flush, since the flush
// lives on the provider. Executor callers should flush the
// provider they constructed at both success and failure paths, per spec
// §4.E.
func Flush(ctx context.Context, tp interface{ ForceFlush(context.Context) error }) error {
	if tp == nil {
		return nil
	}
	return tp.ForceFlush(ctx)
}
