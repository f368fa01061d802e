package telemetry

import (
	"crypto/rand"

	"go.opentelemetry.io/otel/trace"
)

// NewTraceID generates a 128-bit trace ID from a cryptographic RNG, per
// §4.8 ("from a cryptographic RNG") — a deliberate deviation from OTel
// SDK's own default ID generator (math/rand-backed in older SDK
// versions), recorded in the design ledger.
func NewTraceID() trace.TraceID {
	var id trace.TraceID
	_, _ = rand.Read(id[:])
	return id
}

// NewSpanID generates a 64-bit span ID from a cryptographic RNG.
func NewSpanID() trace.SpanID {
	var id trace.SpanID
	_, _ = rand.Read(id[:])
	return id
}
