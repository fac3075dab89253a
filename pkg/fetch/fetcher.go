// Package fetch provides the plain resource fetcher: eagerly started GET
// requests for non-GraphQL provider endpoints (JSON or YAML).
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/profilegen/provider-client/pkg/cache"
)

// RequestTimeout is the uniform connect/read timeout applied to every
// plain resource request.
const RequestTimeout = 60 * time.Second

// Fetcher issues GET requests for named plain resources and registers
// them in the resource cache.
type Fetcher struct {
	httpClient *http.Client
	store      *cache.Store
	logger     zerolog.Logger
}

// New creates a plain resource fetcher backed by store.
func New(store *cache.Store) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: RequestTimeout,
		},
		store:  store,
		logger: log.With().Str("component", "resource-fetcher").Logger(),
	}
}

// StartAll launches a concurrent GET for every named URL immediately and
// registers each as a pending cache entry. The fetches are fully
// independent: they complete in any order and a failure in one does not
// cancel the others. Nothing blocks until a consumer resolves a name.
func (f *Fetcher) StartAll(resources map[string]string) {
	for name, url := range resources {
		f.Start(name, url)
	}
	f.logger.Info().Int("resources", len(resources)).Msg("Prefetch started")
}

// Start launches a single eager GET and registers it under name.
func (f *Fetcher) Start(name, url string) {
	f.store.Start(cache.ResourceKey(name), func(ctx context.Context) (*cache.Result, error) {
		return f.get(ctx, name, url)
	})
}

// JSON resolves a named resource as decoded JSON.
// It returns (nil, nil) when the provider answered 201/202 (no data yet).
func (f *Fetcher) JSON(ctx context.Context, name string) (any, error) {
	return f.store.Resolve(ctx, cache.ResourceKey(name), nil)
}

// YAML resolves a named resource with the YAML converter, e.g. the
// linguist language table.
func (f *Fetcher) YAML(ctx context.Context, name string) (any, error) {
	return f.store.Resolve(ctx, cache.ResourceKey(name), DecodeYAML)
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (f *Fetcher) SetHTTPClient(client *http.Client) {
	f.httpClient = client
}

// get performs the actual GET and materializes the response.
func (f *Fetcher) get(ctx context.Context, name, url string) (*cache.Result, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %q: %w", name, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(name, "network_error").Inc()
		f.logger.Error().Err(err).Str("resource", name).Msg("Resource fetch failed")
		return nil, fmt.Errorf("fetch %q: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		requestsTotal.WithLabelValues(name, "network_error").Inc()
		return nil, fmt.Errorf("read body of %q: %w", url, err)
	}

	requestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(name, strconv.Itoa(resp.StatusCode)).Inc()

	f.logger.Debug().
		Str("resource", name).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Resource fetched")

	return &cache.Result{
		StatusCode: resp.StatusCode,
		Body:       body,
		URL:        url,
	}, nil
}
