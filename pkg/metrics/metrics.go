// Package metrics provides the centralized Prometheus registry reference
// for the provider client. All metrics are defined in their respective
// packages (cache, fetch, graphql) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the provider client.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - provider_cache_hits_total{kind} (Counter): Settled-entry reuse by key namespace
//   - provider_cache_misses_total (Counter): Fingerprint lookups that required a fetch
//   - provider_pending_awaits_total (Counter): First-time settlements of pending entries
//   - provider_pending_drained_total (Counter): Pending entries drained at shutdown
//
// Plain Resource Metrics (pkg/fetch):
//   - provider_requests_total{resource, status} (Counter): GET requests by resource and status
//   - provider_request_duration_seconds{resource} (Histogram): Request duration by resource
//
// GraphQL Metrics (pkg/graphql):
//   - provider_graphql_requests_total{query, status} (Counter): POSTs by query and status
//   - provider_graphql_request_duration_seconds{query} (Histogram): Request duration by query
//   - provider_graphql_retries_total{query} (Counter): 502 retry attempts by query
//   - provider_graphql_retry_exhausted_total{query} (Counter): Exhausted retry budgets by query
//   - provider_graphql_pages_total{query} (Counter): Pages fetched during pagination
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(provider_cache_hits_total[5m])) /
//   (sum(rate(provider_cache_hits_total[5m])) + sum(rate(provider_cache_misses_total[5m])))
//
//   # 502 Retry Rate
//   rate(provider_graphql_retries_total[5m])
//
//   # P95 GraphQL Latency
//   histogram_quantile(0.95, rate(provider_graphql_request_duration_seconds_bucket[5m]))
