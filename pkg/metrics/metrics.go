package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Lifecycle operation outcomes, e.g. operation="acquire", outcome="invalid_state".
	LifecycleOperationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_operation_count",
			Help: "Total number of project lifecycle operations",
		},
		[]string{"operation", "outcome"},
	)

	// HTTP request latency (seconds).
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// MQ consume latency (milliseconds).
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// Notifications written by the worker.
	NotificationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_count",
			Help: "Total number of notifications created",
		},
		[]string{"kind"},
	)
)

// RecordLifecycleOperation records one store operation and its outcome.
func RecordLifecycleOperation(operation, outcome string) {
	LifecycleOperationCount.WithLabelValues(operation, outcome).Inc()
}

// RecordHTTPRequestDuration records one HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordMQConsumeLatency records handling latency for one delivery.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// IncrementNotification counts one created notification.
func IncrementNotification(kind string) {
	NotificationCount.WithLabelValues(kind).Inc()
}
