// Package metrics provides Prometheus metrics for the cutoff prediction service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// resultBuckets covers the number of programs returned per request.
var resultBuckets = []float64{0, 1, 5, 10, 25, 50, 100, 250, 500} //nolint:gochecknoglobals // bucket layout

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Prediction metrics
	predictions         *prometheus.CounterVec
	predictionRequests  prometheus.Counter
	predictionLatency   prometheus.Histogram
	predictionResults   prometheus.Histogram
	belowThreshold      prometheus.Counter
	duplicatesDropped   prometheus.Counter
	invalidObservations prometheus.Counter
	malformedRecords    prometheus.Counter
	consolidatedGroups  prometheus.Gauge
	datasetRecords      prometheus.Gauge
	predictionErrors    prometheus.Counter

	// Batch queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueue            prometheus.Counter
	queueEnqueueErrors      prometheus.Counter
	batchJobs               *prometheus.CounterVec
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
	rateLimited         *prometheus.CounterVec

	// Process
	systemMemoryUsage prometheus.Gauge
	systemGoroutines  prometheus.Gauge
	systemGCPauseTime prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cutoff",
		subsystem:        "predictor",
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

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.predictions = m.counterVec("predictions_total",
		"Scored programs returned to candidates, by probability method", "method")
	m.predictionRequests = m.counter("prediction_requests_total", "Prediction requests served")
	m.predictionLatency = m.histogram("prediction_latency_milliseconds",
		"Time to consolidate, score and rank one request", m.histogramBuckets)
	m.predictionResults = m.histogram("prediction_results", "Programs returned per request", resultBuckets)
	m.belowThreshold = m.counter("below_threshold_total", "Programs dropped for falling below the relevance threshold")
	m.duplicatesDropped = m.counter("duplicates_dropped_total", "Programs dropped by institution deduplication")
	m.invalidObservations = m.counter("invalid_observations_total",
		"Round statistics skipped during pooling for a non-finite mean")
	m.malformedRecords = m.counter("malformed_records_total", "Dataset records skipped for a blank identity field")
	m.consolidatedGroups = m.gauge("consolidated_groups", "Programs produced by the latest consolidation")
	m.datasetRecords = m.gauge("dataset_records", "Historical records currently loaded")
	m.predictionErrors = m.counter("prediction_errors_total", "Prediction requests that failed")

	m.queueSize = m.gauge("queue_size", "Current size of the batch job queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum batch job queue capacity")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Batch jobs enqueued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Batch jobs rejected by a full or closed queue")
	m.batchJobs = m.counterVec("batch_jobs_total", "Batch jobs finished, by status", "status")
	m.workerCount = m.gauge("worker_count", "Running batch workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Worker time spent on one batch job", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Batch jobs that failed inside a worker")

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		ConstLabels: m.customLabels,
		Buckets:     m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.httpErrors = m.counterVec("http_errors_total",
		"HTTP error responses by endpoint, method and error code", "endpoint", "method", "error_type")
	m.rateLimited = m.counterVec("rate_limited_total", "Requests rejected by the rate limiter", "endpoint")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated by the process")
	m.systemGoroutines = m.gauge("system_goroutines", "Live goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause per sample", m.histogramBuckets)
}

// RecordPrediction counts one returned program scored with method.
func RecordPrediction(method string) {
	globalManager.predictions.WithLabelValues(method).Inc()
}

// RecordPredictionRequest records one served request with its latency and result count.
func RecordPredictionRequest(latencyMs float64, results int) {
	globalManager.predictionRequests.Inc()
	globalManager.predictionLatency.Observe(latencyMs)
	globalManager.predictionResults.Observe(float64(results))
}

// RecordPredictionError increments the prediction error counter.
func RecordPredictionError() {
	globalManager.predictionErrors.Inc()
}

// RecordBelowThreshold adds n programs dropped by the relevance threshold.
func RecordBelowThreshold(n int) {
	globalManager.belowThreshold.Add(float64(n))
}

// RecordDuplicatesDropped adds n programs dropped by deduplication.
func RecordDuplicatesDropped(n int) {
	globalManager.duplicatesDropped.Add(float64(n))
}

// RecordInvalidObservations adds n skipped round observations.
func RecordInvalidObservations(n int) {
	globalManager.invalidObservations.Add(float64(n))
}

// RecordMalformedRecords adds n skipped dataset records.
func RecordMalformedRecords(n int) {
	globalManager.malformedRecords.Add(float64(n))
}

// UpdateConsolidatedGroups sets the number of programs of the latest consolidation.
func UpdateConsolidatedGroups(n int) {
	globalManager.consolidatedGroups.Set(float64(n))
}

// UpdateDatasetRecords sets the number of loaded historical records.
func UpdateDatasetRecords(n int) {
	globalManager.datasetRecords.Set(float64(n))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordBatchJob counts a finished batch job by status ("ok" or "error").
func RecordBatchJob(status string) {
	globalManager.batchJobs.WithLabelValues(status).Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError records an error response with its error code.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRateLimited records a request rejected by the rate limiter.
func RecordRateLimited(endpoint string) {
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutines.Set(float64(count))
}

// RecordSystemGCPauseTime observes an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the custom registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
