// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// mounting promhttp.Handler() on /metrics is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ResourcesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resources_created_total",
			Help: "Cumulative number of records created, by resource.",
		}, []string{"resource"})

	FavoritesMarkedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favorites_marked_total",
			Help: "Cumulative number of favorite markings, by resource.",
		}, []string{"resource"})

	EventPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "event_publish_errors_total",
			Help: "Cumulative number of broker publish failures.",
		})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(
		ResourcesCreatedTotal,
		FavoritesMarkedTotal,
		EventPublishErrorsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
