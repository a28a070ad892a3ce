package localstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// localEntries tracks the number of entries held by local stores.
	localEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_local_entries",
			Help: "Current number of entries in the local fallback store",
		},
	)

	// localEvictions tracks TTL evictions fired by the scheduled timers.
	localEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_local_evictions_total",
			Help: "Total number of local store entries evicted on TTL expiry",
		},
	)
)
