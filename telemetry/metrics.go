// Package telemetry implements the metrics registry, Prometheus text
// exporter, and the W3C-compatible span/tracing model used by the
// tracing hook and batch exporter pipeline.
package telemetry

import (
	"sort"
	"sync"
)

// Kind names a metric's shape.
type Kind string

const (
	KindCounter   Kind = "counter"
	KindGauge     Kind = "gauge"
	KindHistogram Kind = "histogram"
	KindSummary   Kind = "summary"
)

// Labels is an ordered-at-render label set.
type Labels map[string]string

// Snapshot is a point-in-time read of one metric's value, keyed to its
// name+labels combination.
type Snapshot struct {
	Name   string
	Help   string
	Kind   Kind
	Labels Labels

	// Counter/gauge
	Value float64

	// Histogram/summary
	Count          int64
	Sum            float64
	BucketCounts   map[float64]int64 // upper_bound -> cumulative count
	BucketBounds   []float64
	Quantiles      map[float64]float64
}

type counter struct {
	mu    sync.Mutex
	value float64
}

type gauge struct {
	mu    sync.Mutex
	value float64
}

type histogram struct {
	mu      sync.Mutex
	bounds  []float64
	buckets map[float64]int64
	count   int64
	sum     float64
}

func newHistogram(bounds []float64) *histogram {
	b := append([]float64{}, bounds...)
	sort.Float64s(b)
	buckets := make(map[float64]int64, len(b))
	for _, u := range b {
		buckets[u] = 0
	}
	return &histogram{bounds: b, buckets: buckets}
}

// Observe updates count/sum and increments every bucket whose upper_bound
// >= value, per §4.7.
func (h *histogram) observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += v
	for _, u := range h.bounds {
		if u >= v {
			h.buckets[u]++
		}
	}
}

type summary struct {
	mu        sync.Mutex
	quantiles []float64
	values    []float64
	count     int64
	sum       float64
}

func newSummary(quantiles []float64) *summary {
	return &summary{quantiles: append([]float64{}, quantiles...)}
}

func (s *summary) observe(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	s.sum += v
	s.values = append(s.values, v)
}

func (s *summary) computeQuantiles() map[float64]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := append([]float64{}, s.values...)
	sort.Float64s(sorted)
	out := map[float64]float64{}
	n := len(sorted)
	for _, q := range s.quantiles {
		if n == 0 {
			out[q] = 0
			continue
		}
		idx := int(q * float64(n-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			idx = n - 1
		}
		out[q] = sorted[idx]
	}
	return out
}

type metricKey struct {
	name   string
	labels string
}

func labelsKey(l Labels) string {
	if len(l) == 0 {
		return ""
	}
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := ""
	for _, k := range keys {
		s += k + "=" + l[k] + ","
	}
	return s
}

type metricEntry struct {
	kind    Kind
	help    string
	labels  Labels
	counter *counter
	gauge   *gauge
	hist    *histogram
	summ    *summary
}

// Collector is a pluggable source of additional metrics folded into a
// CollectAll snapshot (e.g. a hook's own GetMetrics output, adapted by a
// caller into Snapshot records).
type Collector interface {
	Collect() []Snapshot
}

// Registry is the string-keyed map of metrics plus a list of pluggable
// Collectors, matching §4.7.
type Registry struct {
	mu         sync.Mutex
	entries    map[metricKey]*metricEntry
	collectors []Collector
}

func NewRegistry() *Registry {
	return &Registry{entries: map[metricKey]*metricEntry{}}
}

func (r *Registry) AddCollector(c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors = append(r.collectors, c)
}

func (r *Registry) getOrCreate(name string, kind Kind, help string, labels Labels, init func() *metricEntry) *metricEntry {
	key := metricKey{name: name, labels: labelsKey(labels)}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		e = init()
		e.kind = kind
		e.help = help
		e.labels = labels
		r.entries[key] = e
	}
	return e
}

// IncrementCounter adds delta (monotonic, caller's responsibility to pass
// non-negative) to the named counter, creating it on first use.
func (r *Registry) IncrementCounter(name, help string, labels Labels, delta float64) {
	e := r.getOrCreate(name, KindCounter, help, labels, func() *metricEntry {
		return &metricEntry{counter: &counter{}}
	})
	e.counter.mu.Lock()
	e.counter.value += delta
	e.counter.mu.Unlock()
}

// SetGauge sets the named gauge to v, creating it on first use.
func (r *Registry) SetGauge(name, help string, labels Labels, v float64) {
	e := r.getOrCreate(name, KindGauge, help, labels, func() *metricEntry {
		return &metricEntry{gauge: &gauge{}}
	})
	e.gauge.mu.Lock()
	e.gauge.value = v
	e.gauge.mu.Unlock()
}

// ObserveHistogram records v into the named histogram, with bounds fixed
// at first-use time.
func (r *Registry) ObserveHistogram(name, help string, labels Labels, bounds []float64, v float64) {
	e := r.getOrCreate(name, KindHistogram, help, labels, func() *metricEntry {
		return &metricEntry{hist: newHistogram(bounds)}
	})
	e.hist.observe(v)
}

// ObserveSummary records v into the named summary, with quantiles fixed
// at first-use time.
func (r *Registry) ObserveSummary(name, help string, labels Labels, quantiles []float64, v float64) {
	e := r.getOrCreate(name, KindSummary, help, labels, func() *metricEntry {
		return &metricEntry{summ: newSummary(quantiles)}
	})
	e.summ.observe(v)
}

// CollectAll snapshots every registered metric plus every collector's
// output.
func (r *Registry) CollectAll() []Snapshot {
	r.mu.Lock()
	entries := make([]*metricEntry, 0, len(r.entries))
	keys := make([]metricKey, 0, len(r.entries))
	for k, e := range r.entries {
		entries = append(entries, e)
		keys = append(keys, k)
	}
	collectors := append([]Collector{}, r.collectors...)
	r.mu.Unlock()

	out := make([]Snapshot, 0, len(entries))
	for i, e := range entries {
		s := Snapshot{Name: keys[i].name, Help: e.help, Kind: e.kind, Labels: e.labels}
		switch e.kind {
		case KindCounter:
			e.counter.mu.Lock()
			s.Value = e.counter.value
			e.counter.mu.Unlock()
		case KindGauge:
			e.gauge.mu.Lock()
			s.Value = e.gauge.value
			e.gauge.mu.Unlock()
		case KindHistogram:
			e.hist.mu.Lock()
			s.Count = e.hist.count
			s.Sum = e.hist.sum
			s.BucketBounds = append([]float64{}, e.hist.bounds...)
			s.BucketCounts = map[float64]int64{}
			for k, v := range e.hist.buckets {
				s.BucketCounts[k] = v
			}
			e.hist.mu.Unlock()
		case KindSummary:
			e.summ.mu.Lock()
			s.Count = e.summ.count
			s.Sum = e.summ.sum
			e.summ.mu.Unlock()
			s.Quantiles = e.summ.computeQuantiles()
		}
		out = append(out, s)
	}

	for _, c := range collectors {
		out = append(out, c.Collect()...)
	}
	return out
}
