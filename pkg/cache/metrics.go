package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks cache hits by serving layer.
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"layer"}, // "redis", "local"
	)

	// cacheMisses tracks cache misses across both layers.
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// cacheFallbacks tracks per-call degradations to the local store.
	cacheFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_fallbacks_total",
			Help: "Total number of calls degraded to the local store after a remote failure",
		},
		[]string{"operation"}, // "get", "set", "delete", "increment"
	)
)
