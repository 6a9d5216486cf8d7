package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine client metrics.
var (
	EngineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "findex",
			Name:      "engine_requests_total",
			Help:      "Total number of search engine requests",
		},
		[]string{"operation", "status"}, // status: HTTP code or "transport_error"
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "findex",
			Name:      "engine_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "findex",
			Name:      "search_cache_total",
			Help:      "Search response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)
)

// Task tracking metrics.
var (
	TaskWaitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "findex",
			Name:      "task_waits_total",
			Help:      "Task batch waits by outcome",
		},
		[]string{"outcome"}, // succeeded / failed / timed_out / error
	)

	TaskWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "findex",
			Name:      "task_wait_duration_seconds",
			Help:      "Time spent waiting for a task batch to finish",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	TaskPollsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "findex",
			Name:      "task_polls_total",
			Help:      "Total number of task status poll rounds",
		},
	)
)

var registered bool

// Register registers the engine, cache, task and embedding metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(
		EngineRequestsTotal,
		EngineRequestDuration,
		SearchCacheTotal,
		TaskWaitsTotal,
		TaskWaitDuration,
		TaskPollsTotal,
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingTokensTotal,
		EmbeddingErrorsTotal,
		EmbeddingCacheTotal,
	)
	registered = true
}
