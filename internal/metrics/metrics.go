// Package metrics holds the Prometheus collectors shared by the API and the
// worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "brotato_world"

// Generation outcomes
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	generations        *prometheus.CounterVec
	generationDuration prometheus.Histogram
	locations          prometheus.Histogram
	queueDepth         prometheus.Gauge

	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "World generations by outcome.",
		}, []string{"outcome"}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time spent generating one world.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		locations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generated_locations",
			Help:      "Placeable locations per generated world.",
			Buckets:   prometheus.LinearBuckets(0, 100, 10),
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Pending generation requests seen at the last enqueue.",
		}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "path", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "HTTP requests currently being served.",
		}),
	}

	reg.MustRegister(
		m.generations, m.generationDuration, m.locations, m.queueDepth,
		m.reqDuration, m.reqInflight,
	)
	return m
}

// ObserveGeneration records one finished generation.
func (m *Metrics) ObserveGeneration(outcome string, elapsed time.Duration, locations int) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
	m.generationDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeSuccess {
		m.locations.Observe(float64(locations))
	}
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// RequestStarted marks an HTTP request in flight and returns the func that
// records it once the route and status are known.
func (m *Metrics) RequestStarted() func(method, path string, status int) {
	if m == nil {
		return func(string, string, int) {}
	}
	start := time.Now()
	m.reqInflight.Inc()
	return func(method, path string, status int) {
		m.reqInflight.Dec()
		m.reqDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
