// Package testutil provides testing utilities for the provider client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock provider endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockProvider is a configurable mock provider server for testing. It
// counts requests per path so tests can assert "at most one network
// operation per resource".
type MockProvider struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	requestCount      map[string]int
	lastRequestHeader http.Header
}

// NewMockProvider creates a new mock provider server.
func NewMockProvider() *MockProvider {
	mock := &MockProvider{
		handlers:     make(map[string]func(w http.ResponseWriter, r *http.Request)),
		requestCount: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount[r.URL.Path]++
		mock.lastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockProvider) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockProvider) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = make(map[string]int)
	m.lastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockProvider) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockProvider) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// RequestCount returns the number of requests made to a path.
func (m *MockProvider) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount[path]
}

// TotalRequests returns the number of requests made to the server.
func (m *MockProvider) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.requestCount {
		total += n
	}
	return total
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockProvider) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// SetGraphQLScript configures /graphql to answer with the given responses
// in order, repeating the last one once the script is exhausted.
func (m *MockProvider) SetGraphQLScript(responses ...MockResponse) {
	var mu sync.Mutex
	call := 0
	m.SetHandler("/graphql", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := responses[call]
		if call < len(responses)-1 {
			call++
		}
		mu.Unlock()

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GraphQLEndpoint returns the URL of the mock GraphQL endpoint.
func (m *MockProvider) GraphQLEndpoint() string {
	return m.server.URL + "/graphql"
}

// defaultHandler provides a default JSON response.
func (m *MockProvider) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

// PageBody builds one paginated GraphQL response body with the node list
// nested under the given field path, itemCount synthetic nodes, and the
// supplied cursor metadata.
func PageBody(fieldPath []string, itemCount int, endCursor string, hasNextPage bool) string {
	nodes := make([]any, itemCount)
	for i := range nodes {
		nodes[i] = map[string]any{"name": fmt.Sprintf("item-%d", i)}
	}

	inner := map[string]any{
		"nodes": nodes,
		"pageInfo": map[string]any{
			"endCursor":   endCursor,
			"hasNextPage": hasNextPage,
		},
	}

	wrapped := any(inner)
	for i := len(fieldPath) - 1; i >= 0; i-- {
		wrapped = map[string]any{fieldPath[i]: wrapped}
	}

	body, err := json.Marshal(map[string]any{"data": wrapped})
	if err != nil {
		panic(err)
	}
	return string(body)
}
