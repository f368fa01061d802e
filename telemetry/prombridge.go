package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusBridge mirrors a Registry snapshot into a real
// prometheus.Registry's dynamically built collectors, for interop with
// the wider Prometheus ecosystem (scraping, alerting rules) alongside the
// hand-formatted exporter above. Grounded on kadirpekel-hector's
// Namespace/Subsystem CounterVec/HistogramVec/GaugeVec construction.
type PrometheusBridge struct {
	Namespace string
	Subsystem string
	source    *Registry
}

func NewPrometheusBridge(namespace, subsystem string, source *Registry) *PrometheusBridge {
	return &PrometheusBridge{Namespace: namespace, Subsystem: subsystem, source: source}
}

// constCollector adapts a single pre-built prometheus.Metric into a
// prometheus.Collector, since MustRegister wants a Collector, not a bare
// Metric.
type constCollector struct{ m prometheus.Metric }

func (c constCollector) Describe(ch chan<- *prometheus.Desc) { ch <- c.m.Desc() }
func (c constCollector) Collect(ch chan<- prometheus.Metric) { ch <- c.m }

// Handler builds a fresh prometheus.Registry populated from the current
// snapshot and returns an http.Handler serving it, suitable for mounting
// at /metrics. A fresh registry per call keeps cardinality bounded to
// whatever currently exists in source.
func (b *PrometheusBridge) Handler() http.Handler {
	reg := prometheus.NewRegistry()
	for _, s := range b.source.CollectAll() {
		fqName := prometheus.BuildFQName(b.Namespace, b.Subsystem, s.Name)
		switch s.Kind {
		case KindCounter:
			desc := prometheus.NewDesc(fqName, s.Help, nil, prometheus.Labels(s.Labels))
			m, err := prometheus.NewConstMetric(desc, prometheus.CounterValue, s.Value)
			if err == nil {
				reg.MustRegister(constCollector{m})
			}
		case KindGauge:
			desc := prometheus.NewDesc(fqName, s.Help, nil, prometheus.Labels(s.Labels))
			m, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, s.Value)
			if err == nil {
				reg.MustRegister(constCollector{m})
			}
		case KindHistogram:
			desc := prometheus.NewDesc(fqName, s.Help, nil, prometheus.Labels(s.Labels))
			buckets := make(map[float64]uint64, len(s.BucketCounts))
			for bound, count := range s.BucketCounts {
				buckets[bound] = uint64(count)
			}
			m, err := prometheus.NewConstHistogram(desc, uint64(s.Count), s.Sum, buckets)
			if err == nil {
				reg.MustRegister(constCollector{m})
			}
		case KindSummary:
			desc := prometheus.NewDesc(fqName, s.Help, nil, prometheus.Labels(s.Labels))
			m, err := prometheus.NewConstSummary(desc, uint64(s.Count), s.Sum, s.Quantiles)
			if err == nil {
				reg.MustRegister(constCollector{m})
			}
		}
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
