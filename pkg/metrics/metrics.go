// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "apimgmt"

// SubscriptionTransitions counts subscription lifecycle transitions by
// operation (create, accept, reject, pause, ...).
var SubscriptionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "subscription",
	Name:      "transitions_total",
	Help:      "Number of subscription lifecycle transitions",
}, []string{"operation"})

// APIKeyOperations counts key lifecycle operations (generate, renew,
// revoke, reactivate, expire).
var APIKeyOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "apikey",
	Name:      "operations_total",
	Help:      "Number of API key lifecycle operations",
}, []string{"operation"})

// SideEffectFailures counts best-effort collaborator calls that failed.
var SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "side_effect_failures_total",
	Help:      "Number of failed audit, notification, index or key sync calls",
}, []string{"collaborator"})

// HTTPRequests counts handled REST requests by route pattern and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Number of handled HTTP requests",
}, []string{"method", "route", "status"})

// HTTPDuration observes REST request latency by route pattern.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "Latency of handled HTTP requests",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
