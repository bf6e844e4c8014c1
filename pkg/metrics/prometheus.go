package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes the application counters on the default Prometheus
// registry. It satisfies the domain Metrics interface.
type Recorder struct {
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	upstreamFetch  *prometheus.CounterVec
	forecastsTotal *prometheus.CounterVec
	evaluations    *prometheus.CounterVec
	lastPrice      *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexpulse_cache_hits_total",
				Help: "Cache hits per resource class",
			},
			[]string{"resource"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexpulse_cache_misses_total",
				Help: "Cache misses per resource class",
			},
			[]string{"resource"},
		),
		upstreamFetch: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexpulse_upstream_fetch_total",
				Help: "Upstream fetch attempts by source and result",
			},
			[]string{"source", "result"},
		),
		forecastsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexpulse_forecasts_total",
				Help: "Forecasts produced by index and direction",
			},
			[]string{"index", "direction"},
		),
		evaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexpulse_evaluations_total",
				Help: "Prediction evaluations by index and correctness",
			},
			[]string{"index", "correct"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "indexpulse_last_price",
				Help: "Last observed price for an index",
			},
			[]string{"index"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "indexpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCacheHit records a cache hit for a resource class.
func (r *Recorder) RecordCacheHit(resource string) {
	r.cacheHits.WithLabelValues(resource).Inc()
}

// RecordCacheMiss records a cache miss for a resource class.
func (r *Recorder) RecordCacheMiss(resource string) {
	r.cacheMisses.WithLabelValues(resource).Inc()
}

// RecordUpstreamFetch records an upstream fetch attempt outcome.
func (r *Recorder) RecordUpstreamFetch(source, result string) {
	r.upstreamFetch.WithLabelValues(source, result).Inc()
}

// RecordForecast records a produced forecast.
func (r *Recorder) RecordForecast(indexID, direction string) {
	r.forecastsTotal.WithLabelValues(indexID, direction).Inc()
}

// RecordEvaluation records one prediction evaluation.
func (r *Recorder) RecordEvaluation(indexID string, correct bool) {
	label := "false"
	if correct {
		label = "true"
	}
	r.evaluations.WithLabelValues(indexID, label).Inc()
}

// RecordLastPrice records the last price for an index.
func (r *Recorder) RecordLastPrice(indexID string, price float64) {
	r.lastPrice.WithLabelValues(indexID).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
