// Package metrics exposes Prometheus counters for bot activity and the
// HTTP gateway.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector. Each instance owns its registry so tests
// and multiple commands never collide on registration.
type Metrics struct {
	Registry *prometheus.Registry

	Updates         *prometheus.CounterVec
	TestsCreated    prometheus.Counter
	ResultsRecorded prometheus.Counter
	FlowAborts      *prometheus.CounterVec
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knowme_updates_total",
				Help: "Inbound updates by kind",
			},
			[]string{"kind"},
		),
		TestsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knowme_tests_created_total",
			Help: "Tests persisted by finished creating flows",
		}),
		ResultsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knowme_results_recorded_total",
			Help: "Results persisted by finished taking flows",
		}),
		FlowAborts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "knowme_flow_aborts_total",
				Help: "Flows ended by an error, by reason",
			},
			[]string{"reason"},
		),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "endpoint"},
		),
	}
	m.Registry.MustRegister(
		m.Updates,
		m.TestsCreated,
		m.ResultsRecorded,
		m.FlowAborts,
		m.RequestCounter,
		m.RequestDuration,
	)
	return m
}

// Update counts one inbound update.
func (m *Metrics) Update(kind string) { m.Updates.WithLabelValues(kind).Inc() }

// TestCreated counts one persisted test.
func (m *Metrics) TestCreated() { m.TestsCreated.Inc() }

// ResultRecorded counts one persisted result.
func (m *Metrics) ResultRecorded() { m.ResultsRecorded.Inc() }

// FlowAborted counts one flow ended by reason.
func (m *Metrics) FlowAborted(reason string) { m.FlowAborts.WithLabelValues(reason).Inc() }

// Middleware records count and latency of every request.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		m.RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		m.RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
