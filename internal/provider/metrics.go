package provider

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics
var (
	providerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smm_provider_requests_total",
		Help: "Total provider API requests",
	}, []string{"provider", "action", "outcome"})

	providerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smm_provider_request_duration_seconds",
		Help:    "Provider API request latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"provider", "action"})
)

func observeRequest(providerName, action string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	providerRequestsTotal.WithLabelValues(providerName, action, outcome).Inc()
	providerLatency.WithLabelValues(providerName, action).Observe(elapsed.Seconds())
}
