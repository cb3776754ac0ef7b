package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	sourceHits  *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder registered on reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		sourceHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finadvise_source_hits_total",
				Help: "Tool results served, by operation and data source",
			},
			[]string{"operation", "source"},
		),
		fallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finadvise_fallback_total",
				Help: "Transitions from the durable store to the fallback dataset",
			},
			[]string{"operation", "reason"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finadvise_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finadvise_operation_duration_seconds",
				Help:    "Duration of tool operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSourceHit counts a result attributed to source.
func (r *Recorder) RecordSourceHit(op, source string) {
	r.sourceHits.WithLabelValues(op, source).Inc()
}

// RecordFallback counts a durable-to-fallback transition.
func (r *Recorder) RecordFallback(op, reason string) {
	r.fallbacks.WithLabelValues(op, reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordSourceHit(string, string) {}
func (Nop) RecordFallback(string, string)  {}
func (Nop) RecordError(string)             {}
func (Nop) RecordLatency(string, float64)  {}
