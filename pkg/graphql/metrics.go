package graphql

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	graphqlRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_graphql_requests_total",
		Help: "Total GraphQL requests by query and status",
	}, []string{"query", "status"})

	graphqlRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provider_graphql_request_duration_seconds",
		Help:    "GraphQL request duration in seconds by query",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"query"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_graphql_retries_total",
		Help: "Total number of 502 retry attempts by query",
	}, []string{"query"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_graphql_retry_exhausted_total",
		Help: "Total number of times the 502 retry budget was exhausted by query",
	}, []string{"query"})

	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_graphql_pages_total",
		Help: "Total pages fetched during pagination by query",
	}, []string{"query"})
)
