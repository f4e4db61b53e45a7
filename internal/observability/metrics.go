package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce       sync.Once
	apiRequestsTotal   *prometheus.CounterVec
	apiLatencySeconds  *prometheus.HistogramVec
	apiErrorsTotal     *prometheus.CounterVec
	taskMutationsTotal *prometheus.CounterVec
	progressUpdates    *prometheus.CounterVec
	priorityFallbacks  prometheus.Counter
	leaderboardLookups *prometheus.CounterVec
	uploadRequests     *prometheus.CounterVec
	uploadRejected     *prometheus.CounterVec
	uploadLatency      prometheus.Histogram
	rateLimited        *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		taskMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "task_mutations_total",
			Help: "Task create, edit and delete operations by task type.",
		}, []string{"action", "type"})

		progressUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_updates_total",
			Help: "Progress transitions recorded, labelled by resulting state.",
		}, []string{"state"})

		priorityFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "task_priority_unscored_total",
			Help: "Tasks stored without a priority because scoring failed.",
		})

		leaderboardLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaderboard_cache_lookups_total",
			Help: "Leaderboard cache lookups by result.",
		}, []string{"result"})

		uploadRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_requests_total",
			Help: "Stored uploads by purpose and detected MIME type.",
		}, []string{"purpose", "mime"})

		uploadRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_rejected_total",
			Help: "Rejected uploads by reason.",
		}, []string{"reason"})

		uploadLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upload_latency_seconds",
			Help:    "Time spent validating and storing uploads.",
			Buckets: prometheus.DefBuckets,
		})

		rateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rejected by a rate limiter, by limiter scope.",
		}, []string{"scope"})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			taskMutationsTotal, progressUpdates, priorityFallbacks, leaderboardLookups,
			uploadRequests, uploadRejected, uploadLatency, rateLimited,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// TaskMutations counts task writes by action and type.
func TaskMutations() *prometheus.CounterVec {
	RegisterMetrics()
	return taskMutationsTotal
}

// ProgressUpdates counts progress transitions by state.
func ProgressUpdates() *prometheus.CounterVec {
	RegisterMetrics()
	return progressUpdates
}

// PriorityFallbacks counts tasks saved without a score.
func PriorityFallbacks() prometheus.Counter {
	RegisterMetrics()
	return priorityFallbacks
}

// LeaderboardLookups counts leaderboard cache hits and misses.
func LeaderboardLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return leaderboardLookups
}

// UploadRequests counts stored uploads.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequests
}

// UploadRejected counts rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejected
}

// UploadLatency exposes the upload latency histogram.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatency
}

// RateLimited counts requests turned away by a limiter.
func RateLimited() *prometheus.CounterVec {
	RegisterMetrics()
	return rateLimited
}

// MetricsHandler serves the default registry, negotiating OpenMetrics when
// the scraper asks for it.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}
