// Package cache provides the process-scoped resource cache with the
// await-once resolution contract used by all provider fetches.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// Result is a fully materialized remote response.
type Result struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Body is the raw response body
	Body []byte

	// URL is the original target, kept for error messages
	URL string
}

// Converter turns a raw response body into the caller's data shape.
// A nil Converter means "decode the body as JSON".
type Converter func(body []byte) (any, error)

// Operation performs the network fetch backing a pending entry.
// The context is cancelled when the store is drained.
type Operation func(ctx context.Context) (*Result, error)

// pending is the handle to an in-flight (or failed) operation.
// res and err are written exactly once, before done is closed.
type pending struct {
	cancel context.CancelFunc
	done   chan struct{}
	res    *Result
	err    error
}

// wait blocks until the operation completes or ctx expires.
func (p *pending) wait(ctx context.Context) (*Result, error) {
	select {
	case <-p.done:
		return p.res, p.err
	case <-ctx.Done():
		return nil, fmt.Errorf("awaiting resource: %w", ctx.Err())
	}
}

// entry is a tagged cache value: pending operation, settled raw response,
// or settled materialized value (flattened GraphQL results).
type entry struct {
	pending *pending
	result  *Result
	value   any
	isValue bool
}

// decodeJSON is the default converter applied on resolve.
func decodeJSON(body []byte) (any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode JSON body: %w", err)
	}
	return v, nil
}
