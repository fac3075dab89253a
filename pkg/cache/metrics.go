package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks settled-entry reuse by kind (resource, graphql)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_cache_hits_total",
			Help: "Total number of resource cache hits",
		},
		[]string{"kind"},
	)

	// CacheMisses tracks fingerprint lookups that required a fetch
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "provider_cache_misses_total",
			Help: "Total number of resource cache misses",
		},
	)

	// PendingAwaits tracks first-time resolution of pending entries
	PendingAwaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "provider_pending_awaits_total",
			Help: "Total number of pending entries awaited to settlement",
		},
	)

	// PendingDrained tracks pending entries cancelled or awaited at shutdown
	PendingDrained = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "provider_pending_drained_total",
			Help: "Total number of pending entries drained at shutdown",
		},
	)
)

// kindOf extracts the namespace prefix of a cache key for metric labels.
func kindOf(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return "unknown"
}
