// Package metrics provides Prometheus metrics for the podium ranking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Submission metrics
	submissionsTotal     prometheus.Counter
	submissionsAccepted  prometheus.Counter
	submissionsRejected  prometheus.Counter
	submissionsDuplicate prometheus.Counter

	// Index metrics
	partitionsTotal    prometheus.Gauge
	playersTotal       prometheus.Gauge
	indexUpdateLatency prometheus.Histogram
	indexQueryLatency  prometheus.Histogram

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorsByComponent *prometheus.CounterVec

	// Process metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.submissionsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_total",
		Help:      "Total number of score submissions received",
	})

	m.submissionsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_accepted_total",
		Help:      "Submissions that improved a personal best",
	})

	m.submissionsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_rejected_total",
		Help:      "Submissions that did not beat the stored personal best",
	})

	m.submissionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_duplicate_total",
		Help:      "Submissions short-circuited by the idempotency cache",
	})

	m.partitionsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "partitions_total",
		Help:      "Number of live leaderboard partitions",
	})

	m.playersTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_total",
		Help:      "Total score records across all partitions",
	})

	m.indexUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "index_update_latency_milliseconds",
		Help:      "Rank index update latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.indexQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "index_query_latency_milliseconds",
		Help:      "Rank index query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the submission queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the submission queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization ratio (size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total successful enqueue operations",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total successful dequeue operations",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Enqueue operations rejected by backpressure or shutdown",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of submission workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Worker submission processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total worker processing errors",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Errors by component and kind",
		},
		[]string{"component", "kind"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Heap memory in use",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Number of live goroutines",
	})
}

// Package-level helpers operating on the global manager.

func RecordSubmission() {
	if globalManager != nil && globalManager.enabled {
		globalManager.submissionsTotal.Inc()
	}
}

func RecordSubmissionAccepted() {
	if globalManager != nil && globalManager.enabled {
		globalManager.submissionsAccepted.Inc()
	}
}

func RecordSubmissionRejected() {
	if globalManager != nil && globalManager.enabled {
		globalManager.submissionsRejected.Inc()
	}
}

func RecordSubmissionDuplicate() {
	if globalManager != nil && globalManager.enabled {
		globalManager.submissionsDuplicate.Inc()
	}
}

func UpdatePartitionCount(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.partitionsTotal.Set(float64(count))
	}
}

func UpdatePlayersTotal(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.playersTotal.Set(float64(count))
	}
}

func RecordIndexUpdateLatency(latencyMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.indexUpdateLatency.Observe(latencyMs)
	}
}

func RecordIndexQueryLatency(latencyMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.indexQueryLatency.Observe(latencyMs)
	}
}

func UpdateQueueSize(size int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

func UpdateQueueCapacity(capacity int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

func UpdateQueueUtilization(ratio float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.queueUtilization.Set(ratio)
	}
}

func RecordQueueEnqueue() {
	if globalManager != nil && globalManager.enabled {
		globalManager.queueEnqueues.Inc()
	}
}

func RecordQueueDequeue() {
	if globalManager != nil && globalManager.enabled {
		globalManager.queueDequeues.Inc()
	}
}

func RecordQueueEnqueueError() {
	if globalManager != nil && globalManager.enabled {
		globalManager.queueEnqueueErrors.Inc()
	}
}

func UpdateWorkerCount(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

func RecordWorkerProcessingLatency(latencyMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

func RecordWorkerError() {
	if globalManager != nil && globalManager.enabled {
		globalManager.workerErrors.Inc()
	}
}

func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

func RecordErrorByComponent(component, kind string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
	}
}

func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

func UpdateSystemGoroutineCount(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// GetRegistry exposes the custom registry for the metrics HTTP handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
