package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Domain
	PostsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Total number of posts created",
		},
	)

	PostsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_deleted_total",
			Help: "Total number of posts deleted",
		},
	)

	FollowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "follow_transitions_total",
			Help: "Total number of follow and unfollow transitions",
		},
		[]string{"action"}, // "follow", "unfollow"
	)

	// Object storage
	ImageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_uploads_total",
			Help: "Total number of image uploads by type and result",
		},
		[]string{"type", "result"}, // result: "success", "rejected", "error"
	)

	ImageDeletesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_deletes_failed_total",
			Help: "Best-effort image deletions that failed",
		},
	)

	ObjectStorageBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "object_storage_breaker_state",
			Help: "Object storage circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	// Cache
	ProfileCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_cache_requests_total",
			Help: "Profile cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordImageUpload(kind, result string) {
	ImageUploads.WithLabelValues(kind, result).Inc()
}

func RecordFollow(action string) {
	FollowTransitions.WithLabelValues(action).Inc()
}

func RecordProfileCache(result string) {
	ProfileCacheRequests.WithLabelValues(result).Inc()
}
