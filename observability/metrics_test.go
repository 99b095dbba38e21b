package observability_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdok/sstmap/observability"
)

func TestNewMetricsForTestingIsolated(t *testing.T) {
	a := observability.NewMetricsForTesting()
	b := observability.NewMetricsForTesting()

	a.FilesRendered.Inc()
	a.FilesSkipped.WithLabelValues(observability.ReasonIO).Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.FilesRendered))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.FilesRendered))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.FilesSkipped.WithLabelValues(observability.ReasonIO)))
	assert.Equal(t, 0.0, testutil.ToFloat64(a.FilesSkipped.WithLabelValues(observability.ReasonDataFormat)))
}

func TestNewMetricsRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	assert.Same(t, reg, m.Registry())

	// skip reasons are present before anything is skipped
	assert.Equal(t, 3, testutil.CollectAndCount(m.FilesSkipped))
	assert.Panics(t, func() { observability.NewMetrics(reg) })
}

func TestWriteTextfile(t *testing.T) {
	m := observability.NewMetricsForTesting()
	m.FilesDiscovered.Add(3)
	m.FilesRendered.Add(2)
	m.FilesSkipped.WithLabelValues(observability.ReasonDataFormat).Inc()
	m.RenderDuration.Observe(0.3)

	path := filepath.Join(t.TempDir(), "sstmap.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "sstmap_files_discovered_total 3")
	assert.Contains(t, text, "sstmap_files_rendered_total 2")
	assert.Contains(t, text, `sstmap_files_skipped_total{reason="data_format"} 1`)
	assert.Contains(t, text, "sstmap_render_duration_seconds_count 1")
}
