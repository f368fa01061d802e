package telemetry

import (
	"encoding/hex"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/agentkit/hookflow/corerr"
)

// TraceParent is the decoded form of a W3C traceparent header:
// "00-<32 hex trace_id>-<16 hex span_id>-<2 hex flags>".
type TraceParent struct {
	Version byte
	TraceID trace.TraceID
	SpanID  trace.SpanID
	Flags   byte
}

// Sampled reports whether the sampled flag bit is set.
func (t TraceParent) Sampled() bool { return t.Flags&0x01 != 0 }

// FormatTraceParent renders ctx as "00-<trace_id>-<span_id>-<flags>",
// producing sampled flag "01" by default per §6.
func FormatTraceParent(traceID trace.TraceID, spanID trace.SpanID, sampled bool) string {
	flags := byte(0x00)
	if sampled {
		flags = 0x01
	}
	return fmt.Sprintf("00-%s-%s-%02x", traceID.String(), spanID.String(), flags)
}

// ParseTraceParent parses a W3C traceparent header, rejecting any version
// other than "00" or fields of the wrong length.
func ParseTraceParent(header string) (TraceParent, error) {
	parts := strings.Split(header, "-")
	if len(parts) != 4 {
		return TraceParent{}, corerr.New("ParseTraceParent", corerr.ErrInvalidTraceHeader, "", "expected 4 dash-separated fields")
	}
	if len(parts[0]) != 2 || parts[0] != "00" {
		return TraceParent{}, corerr.New("ParseTraceParent", corerr.ErrInvalidTraceHeader, "", "unsupported version")
	}
	if len(parts[1]) != 32 {
		return TraceParent{}, corerr.New("ParseTraceParent", corerr.ErrInvalidTraceHeader, "", "trace_id must be 32 hex chars")
	}
	if len(parts[2]) != 16 {
		return TraceParent{}, corerr.New("ParseTraceParent", corerr.ErrInvalidTraceHeader, "", "span_id must be 16 hex chars")
	}
	if len(parts[3]) != 2 {
		return TraceParent{}, corerr.New("ParseTraceParent", corerr.ErrInvalidTraceHeader, "", "flags must be 2 hex chars")
	}

	traceIDBytes, err := hex.DecodeString(parts[1])
	if err != nil {
		return TraceParent{}, corerr.Wrap("ParseTraceParent", corerr.ErrInvalidTraceHeader, "", err)
	}
	spanIDBytes, err := hex.DecodeString(parts[2])
	if err != nil {
		return TraceParent{}, corerr.Wrap("ParseTraceParent", corerr.ErrInvalidTraceHeader, "", err)
	}
	flagsBytes, err := hex.DecodeString(parts[3])
	if err != nil {
		return TraceParent{}, corerr.Wrap("ParseTraceParent", corerr.ErrInvalidTraceHeader, "", err)
	}

	var tid trace.TraceID
	copy(tid[:], traceIDBytes)
	var sid trace.SpanID
	copy(sid[:], spanIDBytes)

	return TraceParent{Version: 0x00, TraceID: tid, SpanID: sid, Flags: flagsBytes[0]}, nil
}
