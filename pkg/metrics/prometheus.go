package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal   *prometheus.CounterVec
	fetchErrors    *prometheus.CounterVec
	cacheResults   *prometheus.CounterVec
	snapshotsBuilt prometheus.Counter
	quoteValue     *prometheus.GaugeVec
	fetchDuration  *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_fetches_total",
				Help: "Total number of upstream fetch attempts",
			},
			[]string{"source"},
		),
		fetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_fetch_errors_total",
				Help: "Total number of upstream fetch failures by kind",
			},
			[]string{"source", "kind"},
		),
		cacheResults: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_cache_results_total",
				Help: "Cache lookups by outcome (fresh, stale, miss)",
			},
			[]string{"source", "outcome"},
		),
		snapshotsBuilt: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "marketpulse_snapshots_built_total",
				Help: "Total number of snapshots assembled",
			},
		),
		quoteValue: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketpulse_quote_value",
				Help: "Last observed value for a quote label",
			},
			[]string{"label"},
		),
		fetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketpulse_fetch_duration_seconds",
				Help:    "Duration of upstream fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
	}
}

// RecordFetch records one upstream fetch attempt.
func (r *Recorder) RecordFetch(source string, seconds float64) {
	r.fetchesTotal.WithLabelValues(source).Inc()
	r.fetchDuration.WithLabelValues(source).Observe(seconds)
}

// RecordFetchError records an upstream fetch failure.
func (r *Recorder) RecordFetchError(source, kind string) {
	r.fetchErrors.WithLabelValues(source, kind).Inc()
}

// RecordCacheResult records a cache lookup outcome.
func (r *Recorder) RecordCacheResult(source, outcome string) {
	r.cacheResults.WithLabelValues(source, outcome).Inc()
}

// RecordSnapshot records a completed snapshot build.
func (r *Recorder) RecordSnapshot() {
	r.snapshotsBuilt.Inc()
}

// RecordQuote records the last observed quote value.
func (r *Recorder) RecordQuote(label string, value float64) {
	r.quoteValue.WithLabelValues(label).Set(value)
}
