package cache

import (
	"errors"
	"fmt"
)

// ErrNotRegistered is returned when a resource is resolved before any
// fetch was started for its key.
var ErrNotRegistered = errors.New("resource not registered")

// RemoteError reports a non-success response from a provider.
// Resource is the target URL for plain resources or the query name for
// GraphQL queries.
type RemoteError struct {
	Resource   string
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote resource %q failed with status %d: %s",
		e.Resource, e.StatusCode, e.Body)
}
