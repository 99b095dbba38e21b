// Package observability holds the Prometheus metrics of a render run.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sstmap"

// Skip reasons used as the reason label of FilesSkipped.
const (
	ReasonDataFormat = "data_format"
	ReasonIO         = "io"
	ReasonOther      = "other"
)

// Metrics holds the counters, histogram and gauge of one batch run.
type Metrics struct {
	FilesDiscovered prometheus.Counter
	FilesRendered   prometheus.Counter
	FilesSkipped    *prometheus.CounterVec // labels: reason={data_format,io,other}
	RenderDuration  prometheus.Histogram
	LastRun         prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates the metrics and registers them on reg. A nil reg gets a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		FilesDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_discovered_total",
			Help:      "Input grids matched by the input pattern.",
		}),
		FilesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_rendered_total",
			Help:      "Maps written successfully.",
		}),
		FilesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_skipped_total",
			Help:      "Input grids skipped, by reason.",
		}, []string{"reason"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time from reading a grid to the written map.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last batch run finished.",
		}),
		registry: reg,
	}

	reg.MustRegister(
		m.FilesDiscovered,
		m.FilesRendered,
		m.FilesSkipped,
		m.RenderDuration,
		m.LastRun,
	)
	for _, reason := range []string{ReasonDataFormat, ReasonIO, ReasonOther} {
		m.FilesSkipped.WithLabelValues(reason)
	}
	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// Registry is the registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the text exposition format, for the node exporter
// textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
