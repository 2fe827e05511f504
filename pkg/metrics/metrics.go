package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CascadeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cascade_duration_seconds",
			Help:    "Status aggregation cascade duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"trigger"}, // trigger: task, deliverable, phase
	)

	RecomputeCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recompute_count",
			Help: "Total number of derived-status recomputations",
		},
		[]string{"level"}, // level: deliverable, phase, project
	)

	PermissionDeniedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_denied_count",
			Help: "Total number of mutations rejected by the access resolver",
		},
		[]string{"action"},
	)

	NotificationPublishCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_publish_count",
			Help: "Total number of notification events published",
		},
		[]string{"event_type", "status"}, // status: success, failed
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// ObserveCascade records the duration of one full aggregation cascade.
func ObserveCascade(trigger string, duration time.Duration) {
	CascadeDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

// IncrementRecompute counts a single recomputation step at one level.
func IncrementRecompute(level string) {
	RecomputeCount.WithLabelValues(level).Inc()
}

// IncrementPermissionDenied counts a rejected mutation per action name.
func IncrementPermissionDenied(action string) {
	PermissionDeniedCount.WithLabelValues(action).Inc()
}

// IncrementNotificationPublish counts a publish attempt outcome.
func IncrementNotificationPublish(eventType, status string) {
	NotificationPublishCount.WithLabelValues(eventType, status).Inc()
}

// RecordHTTPRequestDuration records HTTP handler latency.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
