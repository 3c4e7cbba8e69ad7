// Package metrics exposes the Prometheus collectors of the API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LikeToggles counts toggle outcomes: liked, unliked, race_liked, race_unliked.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshare_like_toggles_total",
		Help: "Like toggle outcomes",
	}, []string{"result"})

	// CascadeDeletions counts completed cascades by root entity.
	CascadeDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshare_cascade_deletions_total",
		Help: "Completed cascade deletions by root entity",
	}, []string{"entity"})

	// ObjectCleanupFailures counts swallowed object store deletions.
	ObjectCleanupFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshare_object_cleanup_failures_total",
		Help: "Object store deletions that failed and were skipped",
	}, []string{"kind"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshare_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snapshare_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
