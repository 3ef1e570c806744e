package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// LLMBuckets covers generation latencies from 100ms to 10 minutes.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600}

// Outcome label values for generation metrics.
const (
	OutcomeSuccess = "success"
)

// Metrics collects application metrics.
type Metrics interface {
	// RecordRequest records one served HTTP request. route is the matched
	// route pattern, not the raw path.
	RecordRequest(method, route string, status int, duration time.Duration)

	// RecordGeneration records one dispatch to an engine. model is the
	// engine's configured default or a fixed placeholder for overrides;
	// outcome is OutcomeSuccess or the error kind.
	RecordGeneration(engine, model, outcome string, duration time.Duration)
}

// PrometheusMetrics implements Metrics on a private Prometheus registry.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collectors and registers them, along with
// the Go runtime and process collectors, on a new registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: LLMBuckets,
			},
			[]string{"method", "route"},
		),
		generationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_generations_total",
				Help: "Generation requests dispatched to engines",
			},
			[]string{"engine", "model", "outcome"},
		),
		generationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_generation_duration_seconds",
				Help:    "Engine generation latency",
				Buckets: LLMBuckets,
			},
			[]string{"engine"},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.generationsTotal,
		m.generationDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRequest implements Metrics.
func (m *PrometheusMetrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status/100)+"xx").Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordGeneration implements Metrics.
func (m *PrometheusMetrics) RecordGeneration(engine, model, outcome string, duration time.Duration) {
	m.generationsTotal.WithLabelValues(engine, model, outcome).Inc()
	m.generationDuration.WithLabelValues(engine).Observe(duration.Seconds())
}

// Gather implements prometheus.Gatherer over the private registry.
func (m *PrometheusMetrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m, promhttp.HandlerOpts{})
}

// NopMetrics discards everything. Used when metrics are disabled and in tests.
type NopMetrics struct{}

func (NopMetrics) RecordRequest(string, string, int, time.Duration)       {}
func (NopMetrics) RecordGeneration(string, string, string, time.Duration) {}
