// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragrance_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fragrance_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fragrance_api_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	// Catalog
	RatingsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fragrance_ratings_submitted_total",
			Help: "Total number of ratings folded into catalog means",
		},
	)

	ImagesUploaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragrance_images_uploaded_total",
			Help: "Total number of images stored, by source",
		},
		[]string{"source"}, // "upload", "import"
	)

	ImagesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fragrance_images_deleted_total",
			Help: "Total number of images removed from storage",
		},
	)

	ImageTaggingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fragrance_image_tagging_failures_total",
			Help: "Total number of failed image tagging calls",
		},
	)

	// Collection
	CollectionWears = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fragrance_collection_wears_total",
			Help: "Total number of wear events recorded",
		},
	)

	CollectionEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragrance_collection_entries_total",
			Help: "Collection entry mutations by operation",
		},
		[]string{"operation"}, // "add", "update", "remove"
	)

	// Auth
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragrance_auth_attempts_total",
			Help: "Login and registration attempts by outcome",
		},
		[]string{"operation", "outcome"},
	)
)

// RecordAPIRequest records one finished request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge.
func TrackActiveRequest(started bool) {
	if started {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAuth counts an auth attempt. outcome is "success" or "failure".
func RecordAuth(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	AuthAttempts.WithLabelValues(operation, outcome).Inc()
}
