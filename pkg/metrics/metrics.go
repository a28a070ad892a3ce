// Package metrics provides the centralized Prometheus metrics registry for
// the cache layer. All metrics are defined in their respective packages
// (connection, cache, localstore, ratelimit) to maintain modularity and
// avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the cache layer.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Connection Metrics (pkg/connection):
//   - cache_connection_state (Gauge): -1 degraded, 0 disconnected, 1 connecting, 2 connected
//   - cache_connect_attempts_total (Counter): Connect attempts against the remote cache
//   - cache_connect_failures_total (Counter): Failed connect attempts
//   - cache_disconnects_total (Counter): Unsolicited disconnects detected while connected
//   - cache_retry_exhausted_total (Counter): Times the reconnect budget was exhausted
//   - cache_connect_backoff_seconds (Histogram): Backoff duration between attempts
//
// Facade Metrics (pkg/cache):
//   - cache_hits_total{layer="redis"|"local"} (Counter): Cache hits by serving layer
//   - cache_misses_total (Counter): Cache misses
//   - cache_fallbacks_total{operation} (Counter): Calls degraded to the local store
//
// Local Store Metrics (pkg/localstore):
//   - cache_local_entries (Gauge): Entries currently held by the local store
//   - cache_local_evictions_total (Counter): Entries evicted on TTL expiry
//
// Rate Limit Metrics (pkg/ratelimit):
//   - cache_ratelimit_allowed_total{policy} (Counter): Attempts allowed by policy
//   - cache_ratelimit_rejected_total{policy} (Counter): Attempts rejected by policy
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(cache_hits_total[5m])) /
//   (sum(rate(cache_hits_total[5m])) + sum(rate(cache_misses_total[5m])))
//
//   # Share of traffic served by the local fallback
//   rate(cache_hits_total{layer="local"}[5m]) / rate(cache_hits_total[5m])
//
//   # Remote unhealthy
//   cache_connection_state != 2
//
//   # Rejection rate per policy
//   rate(cache_ratelimit_rejected_total[5m])
