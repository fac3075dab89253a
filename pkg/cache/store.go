package cache

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store is the process-wide resource cache. It maps resource keys to
// pending fetch handles or settled results and is the single source of
// truth for "has this been requested".
//
// A Store is constructor-injected into every component that fetches, so
// tests can run against an isolated instance.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	logger  zerolog.Logger
}

// NewStore creates an empty resource cache.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
		logger:  log.With().Str("component", "resource-cache").Logger(),
	}
}

// Start registers a pending entry under key and launches op immediately.
// The fetch runs in the background; nothing awaits it until Resolve.
// A duplicate key overwrites the previous entry (last writer wins).
func (s *Store) Start(key string, op Operation) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &pending{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer cancel()
		p.res, p.err = op(ctx)
		close(p.done)
	}()

	s.mu.Lock()
	s.entries[key] = &entry{pending: p}
	s.mu.Unlock()

	s.logger.Debug().Str("key", key).Msg("Fetch started")
}

// Resolve returns the materialized value for key.
//
// A pending entry is awaited the first time; on success it settles to the
// raw response and every later Resolve reuses it without network I/O. A
// failed operation propagates its error and is never retried on this path;
// the caller must Start the key again to retry.
//
// Status handling: 200 applies conv (JSON decode when conv is nil),
// 201/202 mean the provider accepted but has no data yet (nil, nil), and
// any other status yields a *RemoteError.
func (s *Store) Resolve(ctx context.Context, key string, conv Converter) (any, error) {
	s.mu.Lock()
	e, ok := s.entries[key]
	var res *Result
	var val any
	var isValue bool
	if ok {
		res = e.result
		val, isValue = e.value, e.isValue
	}
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, key)
	}
	if isValue {
		CacheHits.WithLabelValues(kindOf(key)).Inc()
		return val, nil
	}

	if res == nil {
		r, err := e.pending.wait(ctx)
		if err != nil {
			// Not settled: every later Resolve observes the same error.
			return nil, fmt.Errorf("resource %q: %w", key, err)
		}

		s.mu.Lock()
		if e.result == nil {
			e.result = r
		}
		res = e.result
		s.mu.Unlock()

		PendingAwaits.Inc()
		s.logger.Debug().Str("key", key).Int("status", res.StatusCode).Msg("Fetch settled")
	} else {
		CacheHits.WithLabelValues(kindOf(key)).Inc()
		s.logger.Debug().Str("key", key).Msg("Loaded from cache")
	}

	switch res.StatusCode {
	case http.StatusOK:
		if conv == nil {
			conv = decodeJSON
		}
		return conv(res.Body)
	case http.StatusCreated, http.StatusAccepted:
		s.logger.Warn().Str("key", key).Int("status", res.StatusCode).Msg("Provider has no data yet")
		return nil, nil
	default:
		return nil, &RemoteError{Resource: res.URL, StatusCode: res.StatusCode, Body: res.Body}
	}
}

// PutValue stores a settled materialized value under key. Used for
// flattened GraphQL results keyed by fingerprint.
func (s *Store) PutValue(key string, v any) {
	s.mu.Lock()
	s.entries[key] = &entry{value: v, isValue: true}
	s.mu.Unlock()
}

// Value returns the materialized value stored under key, if any.
func (s *Store) Value(key string) (any, bool) {
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()

	if ok && e.isValue {
		CacheHits.WithLabelValues(kindOf(key)).Inc()
		return e.value, true
	}
	CacheMisses.Inc()
	return nil, false
}

// Drain cancels every still-pending operation and awaits its completion,
// discarding any error, so shutdown can never fail or hang on a straggling
// background fetch. Settled entries are left untouched. Returns the number
// of entries drained.
func (s *Store) Drain(ctx context.Context) int {
	s.mu.Lock()
	var stragglers []*pending
	for _, e := range s.entries {
		if e.pending != nil && e.result == nil {
			stragglers = append(stragglers, e.pending)
		}
	}
	s.mu.Unlock()

	drained := 0
	for _, p := range stragglers {
		p.cancel()
		select {
		case <-p.done:
			// errors from cancelled fetches are intentionally discarded
		case <-ctx.Done():
			s.logger.Warn().Int("remaining", len(stragglers)-drained).Msg("Drain cut short")
			return drained
		}
		drained++
		PendingDrained.Inc()
	}

	if drained > 0 {
		s.logger.Info().Int("drained", drained).Msg("Outstanding fetches drained")
	}
	return drained
}

// Len returns the number of entries currently cached (for tests and
// diagnostics).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
