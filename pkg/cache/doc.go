// Package cache implements the process-scoped resource cache that backs
// every provider fetch: each logical resource is requested at most once per
// run, no matter how many consumers ask for it.
//
// An entry is either Pending (a handle to an in-flight operation) or
// Settled (a materialized result). The transition is one-directional and
// happens exactly once per key, the first time any consumer resolves it.
// Entries are never evicted; the cache lives and dies with the process.
//
// # Basic Usage
//
//	store := cache.NewStore()
//
//	// Fire-and-forget: the GET starts now, nobody is waiting yet.
//	store.Start(cache.ResourceKey("linguist"), func(ctx context.Context) (*cache.Result, error) {
//		return doGet(ctx, url)
//	})
//
//	// Later, any consumer resolves it. The first call awaits the fetch;
//	// every later call reuses the settled response.
//	data, err := store.Resolve(ctx, cache.ResourceKey("linguist"), yamlConverter)
//
// # Resolution Contract
//
// Resolve inspects the settled status code:
//
//   - 200: the converter is applied to the body (JSON decode by default)
//   - 201/202: the provider accepted but has nothing yet — (nil, nil)
//   - anything else: *RemoteError with URL, status, and body
//
// A fetch that failed at the network level propagates its error to every
// resolver and is never retried through this path; re-Start the key to
// retry.
//
// # Fingerprint Keys
//
// Flattened GraphQL results are cached under Fingerprint(query, params),
// a stable hash independent of parameter ordering. Plain resources use
// ResourceKey(name). The two namespaces cannot collide.
//
// # Shutdown
//
//	store.Drain(ctx)
//
// cancels and awaits every still-pending fetch, discarding errors, so the
// process can exit without orphaned network operations.
//
// # Metrics
//
//   - provider_cache_hits_total{kind} - settled-entry reuse
//   - provider_cache_misses_total - fingerprint lookups that fetched
//   - provider_pending_awaits_total - first-time settlements
//   - provider_pending_drained_total - entries drained at shutdown
package cache
