package telemetry

import (
	"go.opentelemetry.io/otel/sdk/instrumentation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// toReadOnlySpan bridges our Span into an otel trace.ReadOnlySpan via the
// SDK's tracetest.SpanStub, so real OTel exporters (stdout, OTLP) can ship
// spans produced by our own model instead of the OTel SDK's tracer.
func toReadOnlySpan(s *Span) sdktrace.ReadOnlySpan {
	s.mu.Lock()
	defer s.mu.Unlock()

	scCfg := trace.SpanContextConfig{
		TraceID:    s.TraceID,
		SpanID:     s.SpanID,
		TraceFlags: trace.FlagsSampled,
	}
	sc := trace.NewSpanContext(scCfg)

	var parent trace.SpanContext
	if s.ParentSpanID != (trace.SpanID{}) {
		parent = trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    s.TraceID,
			SpanID:     s.ParentSpanID,
			TraceFlags: trace.FlagsSampled,
		})
	}

	events := make([]sdktrace.Event, 0, len(s.Events))
	for _, e := range s.Events {
		events = append(events, sdktrace.Event{
			Name:       e.Name,
			Time:       e.Timestamp,
			Attributes: e.Attributes,
		})
	}

	links := make([]sdktrace.Link, 0, len(s.Links))
	for _, l := range s.Links {
		links = append(links, sdktrace.Link{
			SpanContext: trace.NewSpanContext(trace.SpanContextConfig{TraceID: l.TraceID, SpanID: l.SpanID}),
		})
	}

	stub := tracetest.SpanStub{
		Name:                   s.Name,
		SpanContext:            sc,
		Parent:                 parent,
		SpanKind:               spanKindToOtel(s.Kind),
		StartTime:              s.StartTime,
		EndTime:                s.EndTime,
		Attributes:             s.Attributes,
		Events:                 events,
		Links:                  links,
		Status:               sdktrace.Status{Code: s.Status, Description: s.StatusMessage},
		InstrumentationScope: instrumentation.Scope{Name: "github.com/agentkit/hookflow/telemetry"},
	}
	return stub.Snapshot()
}

func spanKindToOtel(k SpanKind) trace.SpanKind {
	switch k {
	case KindServer:
		return trace.SpanKindServer
	case KindClient:
		return trace.SpanKindClient
	case KindProducer:
		return trace.SpanKindProducer
	case KindConsumer:
		return trace.SpanKindConsumer
	default:
		return trace.SpanKindInternal
	}
}
