package graphql

import "errors"

// Common errors returned by the query engine.
var (
	// ErrUnknownQuery is returned when no template exists for a query name.
	ErrUnknownQuery = errors.New("unknown query")

	// ErrMissingParam is returned when a template placeholder has no
	// matching parameter.
	ErrMissingParam = errors.New("missing query parameter")
)
