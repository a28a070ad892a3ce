package connection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the connection lifecycle.
var (
	connState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cache_connection_state",
		Help: "Current connection state (-1 degraded, 0 disconnected, 1 connecting, 2 connected)",
	})

	connectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_connect_attempts_total",
		Help: "Total number of connect attempts against the remote cache",
	})

	connectFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_connect_failures_total",
		Help: "Total number of failed connect attempts",
	})

	disconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_disconnects_total",
		Help: "Total number of unsolicited disconnects detected while connected",
	})

	retryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_retry_exhausted_total",
		Help: "Total number of times the reconnect budget was exhausted",
	})

	backoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_connect_backoff_seconds",
		Help:    "Backoff duration between connect attempts",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5},
	})
)
