package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/sqlkv/internal/dialect"
)

// Metrics holds per-operation counters and latencies.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics creates unregistered store metrics.
func NewMetrics() *Metrics {
	const (
		namespace = "sqlkv"
		subsystem = "store"
	)

	return &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operations_total",
			Help:      "Count of store operations by backend, operation and result",
		}, []string{"backend", "op", "result"}),

		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Histogram of time spent in store operations, including commit",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 8),
		}, []string{"backend", "op"}),
	}
}

// PrometheusCollectors returns the collectors to register.
func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Operations,
		m.Duration,
	}
}

func (m *Metrics) observe(backend string, op dialect.Op, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(backend, string(op), result(err)).Inc()
	m.Duration.WithLabelValues(backend, string(op)).Observe(elapsed.Seconds())
}
