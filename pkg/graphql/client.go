package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/profilegen/provider-client/pkg/cache"
)

// MaxRetries is the number of immediate retries after the initial attempt
// when the endpoint answers 502. Fixed budget, no backoff.
const MaxRetries = 10

// RequestTimeout is the uniform connect/read timeout applied to every
// GraphQL request.
const RequestTimeout = 60 * time.Second

// Config holds the query engine configuration.
type Config struct {
	// Endpoint is the single GraphQL POST endpoint.
	Endpoint string

	// Token is the bearer credential sent with every request.
	Token string

	// Store is the resource cache holding fingerprint-keyed results.
	Store *cache.Store

	// Queries maps query names to templates. Defaults to Queries.
	Queries map[string]string

	// Timeout overrides RequestTimeout when positive.
	Timeout time.Duration
}

// Client issues named, parameterized GraphQL queries against one endpoint
// and caches flattened results by fingerprint.
type Client struct {
	endpoint   string
	token      string
	queries    map[string]string
	httpClient *http.Client
	store      *cache.Store
	logger     zerolog.Logger
}

// New creates a GraphQL query engine.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("resource cache is required")
	}
	if cfg.Queries == nil {
		cfg.Queries = Queries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = RequestTimeout
	}

	return &Client{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		queries:  cfg.Queries,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		store:  cfg.Store,
		logger: log.With().Str("component", "graphql-client").Logger(),
	}, nil
}

// Query renders the named template with params, posts it, and returns the
// decoded JSON body of the first 200 response.
//
// A 502 is retried immediately with the identical request, up to MaxRetries
// times after the initial attempt. Exhausting the budget, or any other
// non-200 status, fails with a *cache.RemoteError carrying the query name,
// status, and body. Non-502 errors are never retried.
func (c *Client) Query(ctx context.Context, name string, params map[string]string) (any, error) {
	tmpl, ok := c.queries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, name)
	}

	rendered, err := render(tmpl, params)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", name, err)
	}

	var res *cache.Result
	for attempt := 0; ; attempt++ {
		res, err = c.post(ctx, name, rendered)
		if err != nil {
			return nil, err
		}

		if res.StatusCode != http.StatusBadGateway {
			break
		}
		if attempt >= MaxRetries {
			retryExhaustedTotal.WithLabelValues(name).Inc()
			c.logger.Warn().
				Str("query", name).
				Int("attempts", attempt+1).
				Msg("Retry budget exhausted")
			break
		}

		retriesTotal.WithLabelValues(name).Inc()
		c.logger.Warn().
			Str("query", name).
			Int("attempt", attempt+1).
			Msg("Upstream 502, retrying")
	}

	if res.StatusCode != http.StatusOK {
		return nil, &cache.RemoteError{
			Resource:   name,
			StatusCode: res.StatusCode,
			Body:       res.Body,
		}
	}

	var v any
	if err := json.Unmarshal(res.Body, &v); err != nil {
		return nil, fmt.Errorf("query %q: decode response: %w", name, err)
	}
	return v, nil
}

// Get returns the cached result for (name, params), fetching at most once
// per fingerprint. Paginated templates are flattened across all pages;
// everything else goes through a single Query call. Failures are not
// cached, so a later identical call retries.
func (c *Client) Get(ctx context.Context, name string, params map[string]string) (any, error) {
	tmpl, ok := c.queries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, name)
	}

	key := cache.Fingerprint(name, params)
	if v, ok := c.store.Value(key); ok {
		c.logger.Debug().Str("query", name).Msg("Query loaded from cache")
		return v, nil
	}

	var res any
	var err error
	if isPaginated(tmpl) {
		res, err = c.FetchPaginated(ctx, name, params)
	} else {
		res, err = c.Query(ctx, name, params)
	}
	if err != nil {
		return nil, err
	}

	c.store.PutValue(key, res)
	return res, nil
}

// post sends one rendered query and materializes the raw response.
func (c *Client) post(ctx context.Context, name, rendered string) (*cache.Result, error) {
	start := time.Now()

	payload, err := json.Marshal(map[string]string{"query": rendered})
	if err != nil {
		return nil, fmt.Errorf("encode query %q: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request for query %q: %w", name, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		graphqlRequestsTotal.WithLabelValues(name, "network_error").Inc()
		c.logger.Error().Err(err).Str("query", name).Msg("GraphQL request failed")
		return nil, fmt.Errorf("query %q: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		graphqlRequestsTotal.WithLabelValues(name, "network_error").Inc()
		return nil, fmt.Errorf("query %q: read response: %w", name, err)
	}

	graphqlRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	graphqlRequestsTotal.WithLabelValues(name, strconv.Itoa(resp.StatusCode)).Inc()

	return &cache.Result{
		StatusCode: resp.StatusCode,
		Body:       body,
		URL:        name,
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
