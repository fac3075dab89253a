package cache

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ResourceKey returns the cache key for a plain named resource.
// Plain and GraphQL keys live in separate namespaces so a resource and a
// query sharing a name can never collide.
func ResourceKey(name string) string {
	return "resource:" + name
}

// Fingerprint returns the cache key for one GraphQL query invocation.
// The hash covers the query name and a canonical serialization of the
// parameters; encoding/json sorts map keys, so the fingerprint is
// independent of parameter ordering.
func Fingerprint(query string, params map[string]string) string {
	canon, err := json.Marshal(params)
	if err != nil {
		// map[string]string cannot fail to marshal
		panic(fmt.Sprintf("canonicalize params: %v", err))
	}

	h := xxhash.New()
	_, _ = h.WriteString(query)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(canon)

	return fmt.Sprintf("graphql:%s:%016x", query, h.Sum64())
}
