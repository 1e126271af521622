package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the engine's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "task_market",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "State transitions committed, by entity and target status.",
		},
		[]string{"entity", "to"},
	)

	Conflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "task_market",
			Subsystem: "lifecycle",
			Name:      "conflicts_total",
			Help:      "Operations that lost an optimistic concurrency race.",
		},
		[]string{"operation"},
	)

	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "task_market",
			Subsystem: "notifications",
			Name:      "total",
			Help:      "Notification outbox outcomes, by type and result.",
		},
		[]string{"type", "result"},
	)

	FollowUps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "task_market",
			Subsystem: "followups",
			Name:      "jobs_total",
			Help:      "Post-commit jobs run, by job name and result.",
		},
		[]string{"job", "result"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "task_market",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "task_market",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		Transitions,
		Conflicts,
		Notifications,
		FollowUps,
		HTTPRequests,
		HTTPDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
