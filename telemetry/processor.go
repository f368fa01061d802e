package telemetry

import (
	"context"
	"sync"
	"time"
)

// SpanExporter is the capability that ships finished spans somewhere
// (stdout, OTLP collector, ...).
type SpanExporter interface {
	Export(ctx context.Context, spans []*Span) error
	Shutdown(ctx context.Context) error
}

// SpanProcessor is the capability a tracer provider drives through a
// span's lifecycle.
type SpanProcessor interface {
	OnStart(ctx context.Context, s *Span)
	OnEnd(s *Span)
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// BatchSpanProcessor buffers finished spans in memory and flushes them to
// its Exporter when the buffer reaches MaxBatch or ExportTimeout elapses
// since the last flush, whichever comes first.
type BatchSpanProcessor struct {
	Exporter     SpanExporter
	MaxBatch     int
	ExportTimeout time.Duration

	mu      sync.Mutex
	buffer  []*Span
	lastFlush time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewBatchSpanProcessor(exporter SpanExporter, maxBatch int, exportTimeout time.Duration) *BatchSpanProcessor {
	p := &BatchSpanProcessor{
		Exporter:      exporter,
		MaxBatch:      maxBatch,
		ExportTimeout: exportTimeout,
		lastFlush:     time.Now(),
		stopCh:        make(chan struct{}),
	}
	p.wg.Add(1)
	go p.tickLoop()
	return p
}

func (p *BatchSpanProcessor) tickLoop() {
	defer p.wg.Done()
	interval := p.ExportTimeout
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.flushIfDue(false)
		case <-p.stopCh:
			return
		}
	}
}

func (p *BatchSpanProcessor) OnStart(ctx context.Context, s *Span) {}

// OnEnd appends the finished span to the buffer, flushing synchronously
// when the buffer reaches MaxBatch.
func (p *BatchSpanProcessor) OnEnd(s *Span) {
	p.mu.Lock()
	p.buffer = append(p.buffer, s)
	full := len(p.buffer) >= p.MaxBatch
	p.mu.Unlock()

	if full {
		p.flushIfDue(true)
	}
}

func (p *BatchSpanProcessor) flushIfDue(force bool) {
	p.mu.Lock()
	due := force || len(p.buffer) >= p.MaxBatch || time.Since(p.lastFlush) >= p.ExportTimeout
	if !due || len(p.buffer) == 0 {
		p.mu.Unlock()
		return
	}
	batch := p.buffer
	p.buffer = nil
	p.lastFlush = time.Now()
	p.mu.Unlock()

	_ = p.Exporter.Export(context.Background(), batch)
}

func (p *BatchSpanProcessor) ForceFlush(ctx context.Context) error {
	p.flushIfDue(true)
	return nil
}

func (p *BatchSpanProcessor) Shutdown(ctx context.Context) error {
	close(p.stopCh)
	p.wg.Wait()
	p.flushIfDue(true)
	return p.Exporter.Shutdown(ctx)
}
