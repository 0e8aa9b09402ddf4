// Package metrics provides Prometheus metrics for the tribureau credit profile service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// scoreBuckets cover the conventional 300-850 credit score range.
var scoreBuckets = []float64{300, 500, 580, 670, 740, 800, 850} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Bureau fan-out
	sourceFetches      *prometheus.CounterVec
	sourceFetchLatency *prometheus.HistogramVec
	sourceTimeouts     *prometheus.CounterVec
	fetchRuns          *prometheus.CounterVec

	// Aggregation
	aggregations      *prometheus.CounterVec
	aggregationErrors *prometheus.CounterVec
	combinedScore     prometheus.Histogram

	// Storage
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Refresh pipeline
	refreshQueueSize     prometheus.Gauge
	refreshQueueCapacity prometheus.Gauge
	refreshEnqueued      prometheus.Counter
	refreshEnqueueErrors *prometheus.CounterVec
	refreshDuplicates    prometheus.Counter
	workerActiveCount    prometheus.Gauge
	workerProcessLatency prometheus.Histogram
	workerErrors         prometheus.Counter
	totalUsers           prometheus.Gauge
	storedRecords        *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tribureau",
		subsystem:        "credit",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.sourceFetches = m.counterVec("source_fetches_total",
		"Bureau source fetch attempts by source and outcome", "source", "outcome")
	m.sourceFetchLatency = m.histogramVec("source_fetch_latency_milliseconds",
		"Bureau source fetch latency in milliseconds", m.histogramBuckets, "source")
	m.sourceTimeouts = m.counterVec("source_timeouts_total",
		"Bureau source calls abandoned after the fetch timeout", "source")
	m.fetchRuns = m.counterVec("fetch_runs_total",
		"Fetch-all invocations by result (complete, degraded, failed)", "result")

	m.aggregations = m.counterVec("aggregations_total",
		"Aggregations computed by method and risk category", "method", "risk_category")
	m.aggregationErrors = m.counterVec("aggregation_errors_total",
		"Aggregations rejected by kind", "kind")
	m.combinedScore = m.histogram("combined_score",
		"Distribution of combined scores", scoreBuckets)

	m.storeLatency = m.histogramVec("store_operation_latency_milliseconds",
		"Store operation latency in milliseconds", m.histogramBuckets, "store", "op")
	m.storeErrors = m.counterVec("store_errors_total",
		"Store operation failures", "store", "op")

	m.refreshQueueSize = m.gauge("refresh_queue_size", "Current number of queued refresh jobs")
	m.refreshQueueCapacity = m.gauge("refresh_queue_capacity", "Maximum number of queued refresh jobs")
	m.refreshEnqueued = m.counter("refresh_enqueued_total", "Refresh jobs accepted onto the queue")
	m.refreshEnqueueErrors = m.counterVec("refresh_enqueue_errors_total",
		"Refresh jobs rejected by the queue", "reason")
	m.refreshDuplicates = m.counter("refresh_duplicates_total",
		"Refresh requests answered as duplicates of a pending job")
	m.workerActiveCount = m.gauge("refresh_workers", "Number of refresh workers")
	m.workerProcessLatency = m.histogram("refresh_processing_latency_milliseconds",
		"Refresh job processing latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("refresh_errors_total", "Refresh jobs that ended with an error")
	m.totalUsers = m.gauge("users", "Number of known users")
	m.storedRecords = m.gaugeVec("stored_records", "Number of persisted records by kind", "kind")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Errors by endpoint, method and type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Allocated heap bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds",
		"Average GC pause in milliseconds", m.histogramBuckets)
}

// Bureau fan-out.

// RecordSourceFetch records one adapter outcome ("available", "unavailable", "timeout").
func RecordSourceFetch(source, outcome string, latencyMs float64) {
	globalManager.sourceFetches.WithLabelValues(source, outcome).Inc()
	globalManager.sourceFetchLatency.WithLabelValues(source).Observe(latencyMs)
}

// RecordSourceTimeout increments the timeout counter for a source.
func RecordSourceTimeout(source string) {
	globalManager.sourceTimeouts.WithLabelValues(source).Inc()
}

// RecordFetchRun records a fetch-all result.
func RecordFetchRun(result string) {
	globalManager.fetchRuns.WithLabelValues(result).Inc()
}

// Aggregation.

// RecordAggregation records a successful aggregation.
func RecordAggregation(method, riskCategory string, combinedScore int) {
	globalManager.aggregations.WithLabelValues(method, riskCategory).Inc()
	globalManager.combinedScore.Observe(float64(combinedScore))
}

// RecordAggregationError records a rejected aggregation.
func RecordAggregationError(kind string) {
	globalManager.aggregationErrors.WithLabelValues(kind).Inc()
}

// Storage.

// RecordStoreLatency records a store operation latency.
func RecordStoreLatency(store, op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(store, op).Observe(latencyMs)
}

// RecordStoreError records a failed store operation.
func RecordStoreError(store, op string) {
	globalManager.storeErrors.WithLabelValues(store, op).Inc()
}

// Refresh pipeline.

// UpdateRefreshQueueSize sets the number of queued refresh jobs.
func UpdateRefreshQueueSize(size int) {
	globalManager.refreshQueueSize.Set(float64(size))
}

// UpdateRefreshQueueCapacity sets the refresh queue capacity.
func UpdateRefreshQueueCapacity(capacity int) {
	globalManager.refreshQueueCapacity.Set(float64(capacity))
}

// RecordRefreshEnqueued increments the accepted refresh counter.
func RecordRefreshEnqueued() {
	globalManager.refreshEnqueued.Inc()
}

// RecordRefreshEnqueueError records a rejected refresh job.
func RecordRefreshEnqueueError(reason string) {
	globalManager.refreshEnqueueErrors.WithLabelValues(reason).Inc()
}

// RecordRefreshDuplicate increments the duplicate refresh counter.
func RecordRefreshDuplicate() {
	globalManager.refreshDuplicates.Inc()
}

// UpdateWorkerCount sets the number of refresh workers.
func UpdateWorkerCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records refresh job latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessLatency.Observe(latencyMs)
}

// RecordWorkerError increments the refresh error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateTotalUsers sets the number of known users.
func UpdateTotalUsers(count int) {
	globalManager.totalUsers.Set(float64(count))
}

// UpdateStoredRecords sets the number of persisted records of a kind
// (users, readings, results).
func UpdateStoredRecords(kind string, count int64) {
	globalManager.storedRecords.WithLabelValues(kind).Set(float64(count))
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
