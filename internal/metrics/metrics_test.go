package metrics_test

import (
	"testing"

	"github.com/jonesrussell/north-cloud/procrawler/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())

	m.Page("stored")
	m.Page("stored")
	m.Strategy("linked_data")
	m.Strategy("")
	m.Records(metrics.RecordAccepted, 5)
	m.Records(metrics.RecordDuplicate, 0)
	m.StoreWrite(false)
	m.RunStarted()
	m.RunFinished("completed")

	assert.InDelta(t, 2, testutil.ToFloat64(m.PagesTotal.WithLabelValues("stored")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StrategyHits.WithLabelValues("linked_data")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(m.RecordsTotal.WithLabelValues(metrics.RecordAccepted)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StoreWritesTotal.WithLabelValues("failed")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.RunsInFlight), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RunsTotal.WithLabelValues("completed")), 0)
}

func TestNilMetricsIsSafe(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Page("empty")
		m.Strategy("markup")
		m.Records(metrics.RecordCapped, 3)
		m.StoreWrite(true)
		m.RunStarted()
		m.RunFinished("empty")
	})
}
