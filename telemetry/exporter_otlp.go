package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/trace"
)

// OTLPSpanExporter ships finished spans to a remote OTLP/gRPC collector,
// via the real otlptracegrpc exporter.
type OTLPSpanExporter struct {
	exporter *otlptrace.Exporter
}

// NewOTLPSpanExporter dials endpoint (host:port) over gRPC. insecure
// disables TLS for local/dev collectors.
func NewOTLPSpanExporter(ctx context.Context, endpoint string, insecure bool) (*OTLPSpanExporter, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	client := otlptracegrpc.NewClient(opts...)
	exp, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, err
	}
	return &OTLPSpanExporter{exporter: exp}, nil
}

func (e *OTLPSpanExporter) Export(ctx context.Context, spans []*Span) error {
	ros := make([]trace.ReadOnlySpan, 0, len(spans))
	for _, s := range spans {
		ros = append(ros, toReadOnlySpan(s))
	}
	return e.exporter.ExportSpans(ctx, ros)
}

func (e *OTLPSpanExporter) Shutdown(ctx context.Context) error {
	return e.exporter.Shutdown(ctx)
}
