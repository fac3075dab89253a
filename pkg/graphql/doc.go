// Package graphql implements the query engine for the single GraphQL
// provider endpoint: named parameterized templates, a fixed immediate-retry
// budget for upstream 502s, cursor pagination flattened into single lists,
// and fingerprint-keyed result caching.
//
// # Usage
//
//	store := cache.NewStore()
//	gql, err := graphql.New(graphql.Config{
//		Endpoint: "https://api.github.com/graphql",
//		Token:    token,
//		Store:    store,
//	})
//
//	// Fetches all pages once; every later identical call is free.
//	repos, err := gql.Get(ctx, "user_repository_list", map[string]string{
//		"username": "octocat",
//	})
//
// Get dispatches paginated templates (those containing $pagination) through
// FetchPaginated and everything else through a single Query call. Results
// are cached under a fingerprint of the query name and its canonicalized
// parameters, so reordered-but-identical parameters hit the cache while any
// differing value fetches fresh.
package graphql
