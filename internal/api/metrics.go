package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playground_runs_total",
		Help: "Algorithm runs by outcome.",
	}, []string{"outcome"})

	backendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "playground_backend_request_duration_seconds",
		Help:    "Latency of power ranking requests to the backend.",
		Buckets: prometheus.DefBuckets,
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playground_http_requests_total",
		Help: "HTTP requests served, by route pattern.",
	}, []string{"route", "method", "status"})
)
