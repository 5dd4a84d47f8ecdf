// Package metrics exposes Prometheus instrumentation for lesson generation
// and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "microlesson"

// Metrics holds every collector on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	GenerationAttempts        *prometheus.CounterVec
	GenerationAttemptDuration *prometheus.HistogramVec
	GenerationOutcomes        *prometheus.CounterVec
	GenerationAttemptsPerRun  *prometheus.HistogramVec

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimited         prometheus.Counter
}

// New registers all collectors plus the Go and process collectors on a new
// registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		GenerationAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_attempts_total",
				Help:      "Provider calls made while generating lessons",
			},
			[]string{"result"},
		),
		GenerationAttemptDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_attempt_duration_seconds",
				Help:      "Duration of a single provider call",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"result"},
		),
		GenerationOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_outcomes_total",
				Help:      "Final generation outcomes",
			},
			[]string{"result"},
		),
		GenerationAttemptsPerRun: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_attempts_per_run",
				Help:      "Provider calls consumed by one generation run",
				Buckets:   []float64{1, 2, 3, 4, 5},
			},
			[]string{"result"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route and method",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		RateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_requests_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
	}
}

// RecordAttempt counts one provider call and its duration.
func (m *Metrics) RecordAttempt(result string, d time.Duration) {
	m.GenerationAttempts.WithLabelValues(result).Inc()
	m.GenerationAttemptDuration.WithLabelValues(result).Observe(d.Seconds())
}

// RecordOutcome counts a finished generation run.
func (m *Metrics) RecordOutcome(result string, attempts int) {
	m.GenerationOutcomes.WithLabelValues(result).Inc()
	m.GenerationAttemptsPerRun.WithLabelValues(result).Observe(float64(attempts))
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
