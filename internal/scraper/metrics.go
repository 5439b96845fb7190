package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors for the scraping pipeline.
// A nil *Metrics disables instrumentation, which keeps tests quiet.
type Metrics struct {
	registry *prometheus.Registry

	fetchesTotal      *prometheus.CounterVec
	retriesTotal      prometheus.Counter
	recordsTotal      *prometheus.CounterVec
	containerFailures *prometheus.CounterVec
	runDuration       prometheus.Histogram
	publishFailures   prometheus.Counter
}

// NewMetrics constructs and registers all collectors on a dedicated registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materialworker_fetches_total",
			Help: "Listing page fetch attempts by supplier and outcome.",
		},
		[]string{"supplier", "outcome"},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "materialworker_fetch_retries_total",
			Help: "Total number of fetch retry attempts scheduled.",
		},
	)
	records := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materialworker_records_extracted_total",
			Help: "Product records extracted by supplier and category.",
		},
		[]string{"supplier", "category"},
	)
	containerFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "materialworker_container_failures_total",
			Help: "Product containers skipped after an extraction failure.",
		},
		[]string{"supplier"},
	)
	runDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "materialworker_run_duration_seconds",
			Help:    "Wall-clock duration of aggregation runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
	publishFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "materialworker_publish_failures_total",
			Help: "Records that could not be published to the stream.",
		},
	)

	registry.MustRegister(fetches, retries, records, containerFailures, runDuration, publishFailures)

	return &Metrics{
		registry:          registry,
		fetchesTotal:      fetches,
		retriesTotal:      retries,
		recordsTotal:      records,
		containerFailures: containerFailures,
		runDuration:       runDuration,
		publishFailures:   publishFailures,
	}
}

// Registry exposes the dedicated registry for the /metrics handler
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// IncFetch counts one fetch attempt outcome for a supplier
func (m *Metrics) IncFetch(supplier, outcome string) {
	if m == nil {
		return
	}
	m.fetchesTotal.WithLabelValues(supplier, outcome).Inc()
}

// IncRetries counts one scheduled retry
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.retriesTotal.Inc()
}

// AddRecords counts extracted records for a supplier and category
func (m *Metrics) AddRecords(supplier, category string, count int) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(supplier, category).Add(float64(count))
}

// IncContainerFailure counts one skipped product container
func (m *Metrics) IncContainerFailure(supplier string) {
	if m == nil {
		return
	}
	m.containerFailures.WithLabelValues(supplier).Inc()
}

// ObserveRunDuration records the duration of one aggregation run
func (m *Metrics) ObserveRunDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(d.Seconds())
}

// IncPublishFailure counts one record that failed to publish
func (m *Metrics) IncPublishFailure() {
	if m == nil {
		return
	}
	m.publishFailures.Inc()
}
