package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentkit/hookflow/hooks"
)

// stateKeyPrefix scopes each TracingHook's open-span stack in an
// EnhancedContext's state store by hook id, so two tracing hooks on the
// same run never read each other's handles.
const stateKeyPrefix = "telemetry.span_stack."

// SpanHandle is the explicit handle a TracingHook threads through an
// EnhancedContext's state store between a span's start point and its end
// point.
type SpanHandle struct {
	Span *Span
}

// Hook starts a span whenever one of its start points fires and ends the
// innermost open span whenever one of its end points fires. Open spans
// live as a per-hook LIFO stack in the run's shared state store: nested
// steps (a sequential/condition/loop step whose children fire the same
// start point before the outer step completes) pair start/end
// innermost-first instead of a same-key toggle misreading a nested start
// as the outer end. Per the design notes, the explicit stacked handle
// replaces the source's "toggle on same context pointer address" scheme.
// Nested spans adopt the innermost open span as parent; a root span may
// adopt a parent trace from a W3C header in context metadata under
// "trace_context". The current span's header is injected back into
// metadata so downstream components propagate it.
type Hook struct {
	hooks.BaseHook
	Processor SpanProcessor

	endPoints map[hooks.Point]struct{}

	mu sync.Mutex
}

// NewTracingHook builds a hook spanning startPoints to endPoints (e.g.
// workflow_step_start to workflow_step_complete/workflow_step_error). The
// hook's supported points are the union of both sets.
func NewTracingHook(id string, startPoints, endPoints []hooks.Point, processor SpanProcessor) *Hook {
	ends := make(map[hooks.Point]struct{}, len(endPoints))
	all := append([]hooks.Point{}, startPoints...)
	for _, p := range endPoints {
		ends[p] = struct{}{}
		all = append(all, p)
	}
	return &Hook{
		BaseHook: hooks.BaseHook{
			IDValue:       id,
			NameValue:     id,
			PriorityValue: hooks.PriorityHigh,
			Points:        all,
			EnabledValue:  true,
		},
		Processor: processor,
		endPoints: ends,
	}
}

func (h *Hook) stateKey() string { return stateKeyPrefix + h.ID() }

func (h *Hook) Execute(ctx context.Context, hctx *hooks.Context) (hooks.Result, error) {
	_, isEnd := h.endPoints[hctx.Point]

	if hctx.Enhanced == nil {
		// No state store to thread handles through; an end point has
		// nothing to close, a start point spans just this invocation.
		if !isEnd {
			span := h.startSpan(ctx, hctx, nil)
			span.End()
			h.Processor.OnEnd(span)
		}
		return hooks.DefaultContinue(), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var stack []*SpanHandle
	if raw, ok := hctx.Enhanced.State.Get(h.stateKey()); ok {
		stack, _ = raw.([]*SpanHandle)
	}

	if isEnd {
		if len(stack) == 0 {
			return hooks.DefaultContinue(), nil
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		hctx.Enhanced.State.Set(h.stateKey(), stack)
		top.Span.End()
		h.Processor.OnEnd(top.Span)
		if len(stack) > 0 {
			injectHeader(hctx, stack[len(stack)-1].Span)
		}
		return hooks.DefaultContinue(), nil
	}

	var parent *Span
	if len(stack) > 0 {
		parent = stack[len(stack)-1].Span
	}
	span := h.startSpan(ctx, hctx, parent)
	stack = append(stack, &SpanHandle{Span: span})
	hctx.Enhanced.State.Set(h.stateKey(), stack)
	injectHeader(hctx, span)
	return hooks.DefaultContinue(), nil
}

// startSpan begins a span under parent when one is open; a root span may
// instead adopt trace identity from a "trace_context" metadata header.
func (h *Hook) startSpan(ctx context.Context, hctx *hooks.Context, parent *Span) *Span {
	var traceID trace.TraceID
	var parentSpanID trace.SpanID

	switch {
	case parent != nil:
		traceID = parent.TraceID
		parentSpanID = parent.SpanID
	default:
		traceID = NewTraceID()
		if raw, ok := hctx.Metadata["trace_context"]; ok {
			if header, ok := raw.(string); ok {
				if tp, err := ParseTraceParent(header); err == nil {
					traceID = tp.TraceID
					parentSpanID = tp.SpanID
				}
				// InvalidTraceHeader per §7: ignored, span starts fresh.
			}
		}
	}

	span := NewSpan(string(hctx.Point), KindInternal, traceID, parentSpanID)
	span.SetAttributes(attribute.String("hook.point", string(hctx.Point)))
	h.Processor.OnStart(ctx, span)
	return span
}

func injectHeader(hctx *hooks.Context, span *Span) {
	header := FormatTraceParent(span.TraceID, span.SpanID, true)
	if hctx.Metadata == nil {
		hctx.Metadata = map[string]interface{}{}
	}
	hctx.Metadata["trace_context"] = header
}
