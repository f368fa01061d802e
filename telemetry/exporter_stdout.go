package telemetry

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
)

// StdoutSpanExporter writes finished spans as JSON to Writer (stdout by
// default), via the real stdouttrace exporter. This is the dev/test
// default, mirrored from the teacher's use of the same exporter.
type StdoutSpanExporter struct {
	exporter trace.SpanExporter
}

func NewStdoutSpanExporter(w io.Writer, prettyPrint bool) (*StdoutSpanExporter, error) {
	if w == nil {
		w = os.Stdout
	}
	opts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if prettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exp, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, err
	}
	return &StdoutSpanExporter{exporter: exp}, nil
}

func (e *StdoutSpanExporter) Export(ctx context.Context, spans []*Span) error {
	ros := make([]trace.ReadOnlySpan, 0, len(spans))
	for _, s := range spans {
		ros = append(ros, toReadOnlySpan(s))
	}
	return e.exporter.ExportSpans(ctx, ros)
}

func (e *StdoutSpanExporter) Shutdown(ctx context.Context) error {
	return e.exporter.Shutdown(ctx)
}
