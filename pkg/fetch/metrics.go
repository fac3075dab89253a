package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_requests_total",
		Help: "Total plain resource requests by resource and status",
	}, []string{"resource", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provider_request_duration_seconds",
		Help:    "Plain resource request duration in seconds by resource",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"resource"})
)
