package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/transport"
)

const namespace = "wps"

// codeError is the code label of a round trip that got no HTTP response.
const codeError = "error"

// codeCircuitOpen is the code label of a request refused by the breaker.
const codeCircuitOpen = "circuit_open"

// Collector holds the client metrics and the registry they live in.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	JobStatuses     *prometheus.CounterVec
	BreakerState    prometheus.Gauge
}

var _ transport.Observer = (*Collector)(nil)

// New creates a Collector registered in a fresh registry together with
// the Go runtime and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of WPS round trips by operation and HTTP status code",
			},
			[]string{"operation", "code"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "WPS round trip duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		JobStatuses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "job",
				Name:      "status_observed_total",
				Help:      "Total number of job status snapshots observed by status",
			},
			[]string{"status"},
		),

		BreakerState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "client",
				Name:      "circuit_breaker",
				Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
		),
	}

	c.registry.MustRegister(
		c.RequestsTotal,
		c.RequestDuration,
		c.JobStatuses,
		c.BreakerState,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveRequest records one round trip.
func (c *Collector) ObserveRequest(operation string, statusCode int, duration time.Duration, err error) {
	code := strconv.Itoa(statusCode)
	switch {
	case errors.Is(err, transport.ErrCircuitOpen):
		code = codeCircuitOpen
	case statusCode == 0:
		code = codeError
	}
	c.RequestsTotal.WithLabelValues(operation, code).Inc()
	if statusCode != 0 {
		c.RequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// ObserveJobStatus records one polled job status.
func (c *Collector) ObserveJobStatus(status model.Status) {
	label := string(status)
	if label == "" {
		label = "unknown"
	}
	c.JobStatuses.WithLabelValues(label).Inc()
}

// RecordBreakerState updates the breaker gauge. Its signature matches
// transport.BreakerPolicy.OnStateChange.
func (c *Collector) RecordBreakerState(_, to transport.BreakerState) {
	c.BreakerState.Set(float64(to))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
