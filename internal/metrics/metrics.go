// Package metrics exposes crawl counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// MetricsNamespace is the namespace for all crawler metrics.
	MetricsNamespace = "procrawler"
)

// Record outcomes reported to RecordsTotal.
const (
	RecordAccepted  = "accepted"
	RecordDuplicate = "duplicate"
	RecordKeyless   = "keyless"
	RecordCapped    = "capped"
)

// Metrics holds the crawler's Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	PagesTotal       *prometheus.CounterVec
	StrategyHits     *prometheus.CounterVec
	RecordsTotal     *prometheus.CounterVec
	StoreWritesTotal *prometheus.CounterVec
	RunsTotal        *prometheus.CounterVec
	RunsInFlight     prometheus.Gauge
}

// New creates and registers the collectors on reg (the default registerer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		PagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "pages_total",
			Help:      "Listing pages processed, by outcome",
		}, []string{"outcome"}),
		StrategyHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "strategy_hits_total",
			Help:      "Pages whose records came from each extraction strategy",
		}, []string{"strategy"}),
		RecordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "records_total",
			Help:      "Candidate records, by commit outcome",
		}, []string{"result"}),
		StoreWritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "store_writes_total",
			Help:      "Bulk writes to the record store, by status",
		}, []string{"status"}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "runs_total",
			Help:      "Finished crawl runs, by status",
		}, []string{"status"}),
		RunsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "runs_in_flight",
			Help:      "Crawl runs currently executing",
		}),
	}
}

// Page counts one processed page.
func (m *Metrics) Page(outcome string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(outcome).Inc()
}

// Strategy counts one page served by strategy.
func (m *Metrics) Strategy(strategy string) {
	if m == nil || strategy == "" {
		return
	}
	m.StrategyHits.WithLabelValues(strategy).Inc()
}

// Records adds n records with the given result.
func (m *Metrics) Records(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsTotal.WithLabelValues(result).Add(float64(n))
}

// StoreWrite counts one bulk write.
func (m *Metrics) StoreWrite(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.StoreWritesTotal.WithLabelValues(status).Inc()
}

// RunStarted marks a run as in flight.
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.RunsInFlight.Inc()
}

// RunFinished records a run's final status.
func (m *Metrics) RunFinished(status string) {
	if m == nil {
		return
	}
	m.RunsInFlight.Dec()
	m.RunsTotal.WithLabelValues(status).Inc()
}
