package telemetry

import (
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanKind mirrors the five kinds named in §3.
type SpanKind string

const (
	KindInternal SpanKind = "internal"
	KindServer   SpanKind = "server"
	KindClient   SpanKind = "client"
	KindProducer SpanKind = "producer"
	KindConsumer SpanKind = "consumer"
)

// Event is one timestamped annotation on a span.
type Event struct {
	Name       string
	Timestamp  time.Time // microsecond resolution per §4.8
	Attributes []attribute.KeyValue
}

// Link references another span (e.g. across a batched fan-in).
type Link struct {
	TraceID trace.TraceID
	SpanID  trace.SpanID
}

// Span owns the full lifecycle record: IDs, timing, attributes, events,
// links, and status. TraceID/SpanID are typed with the real OTel trace
// package so this model can be bridged into a trace.ReadOnlySpan for
// export without re-encoding IDs.
type Span struct {
	mu sync.Mutex

	TraceID      trace.TraceID
	SpanID       trace.SpanID
	ParentSpanID trace.SpanID // zero value means root
	Name         string
	Kind         SpanKind
	StartTime    time.Time
	EndTime      time.Time
	ended        bool
	Status       codes.Code
	StatusMessage string
	Attributes   []attribute.KeyValue
	Events       []Event
	Links        []Link
}

// NewSpan starts a span: generates fresh IDs via crypto/rand (see
// NewTraceID/NewSpanID) unless traceID is supplied (adopting a parent
// trace), and stamps StartTime.
func NewSpan(name string, kind SpanKind, traceID trace.TraceID, parentSpanID trace.SpanID) *Span {
	tid := traceID
	if tid == (trace.TraceID{}) {
		tid = NewTraceID()
	}
	return &Span{
		TraceID:      tid,
		SpanID:       NewSpanID(),
		ParentSpanID: parentSpanID,
		Name:         name,
		Kind:         kind,
		StartTime:    time.Now(),
		Status:       codes.Unset,
	}
}

// SetAttributes appends to the span's attribute set; accumulates, never
// replaces wholesale.
func (s *Span) SetAttributes(attrs ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Attributes = append(s.Attributes, attrs...)
}

// AddEvent appends an event with a microsecond-resolution timestamp.
func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, Event{
		Name:       name,
		Timestamp:  time.Now().Round(time.Microsecond),
		Attributes: attrs,
	})
}

// SetStatus sets the span's status code and optional message.
func (s *Span) SetStatus(code codes.Code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = code
	s.StatusMessage = message
}

// End idempotently stamps EndTime: a second call is a no-op.
func (s *Span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.EndTime = time.Now()
	s.ended = true
}

// Ended reports whether End has been called.
func (s *Span) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}
