package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches         *prometheus.CounterVec
	sentinels       *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

// New registers the recorder on the default registry. Call it once per process.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the recorder on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_pipeline_fetch_total",
				Help: "Per-item fetch outcomes by pipeline stage",
			},
			[]string{"stage", "outcome"},
		),
		sentinels: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_news_sentinel_total",
				Help: "News results collapsed into a sentinel record",
			},
			[]string{"type"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockdash_operation_duration_seconds",
				Help:    "Duration of pipeline operations in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
		upstreamTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdash_upstream_requests_total",
				Help: "Outbound upstream requests by endpoint and status code",
			},
			[]string{"endpoint", "code"},
		),
		upstreamLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockdash_upstream_duration_seconds",
				Help:    "Outbound upstream latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"endpoint"},
		),
	}
}

// RecordFetch counts one item outcome (ok, failed, placeholder) for a stage.
func (r *Recorder) RecordFetch(stage, outcome string) {
	r.fetches.WithLabelValues(stage, outcome).Inc()
}

// RecordSentinel counts a news sentinel by type.
func (r *Recorder) RecordSentinel(kind string) {
	r.sentinels.WithLabelValues(kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// ObserveUpstream matches pkg/http.Observer; status 0 means no response.
func (r *Recorder) ObserveUpstream(name string, status int, took time.Duration, _ error) {
	code := "none"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	r.upstreamTotal.WithLabelValues(name, code).Inc()
	r.upstreamLatency.WithLabelValues(name).Observe(took.Seconds())
}
