// Package metrics provides Prometheus metrics for the carwise service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by carwise.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Estimators
	assessments        *prometheus.CounterVec
	assessmentScore    prometheus.Histogram
	priceEstimates     prometheus.Counter
	estimatedPrice     prometheus.Histogram
	validationFailures *prometheus.CounterVec

	// Diagnosis and upstream
	diagnoses         *prometheus.CounterVec
	upstreamFallbacks prometheus.Counter
	upstreamLatency   prometheus.Histogram

	// Garage directory
	garageSearches      prometheus.Counter
	garageSearchResults prometheus.Histogram
	garagesTotal        prometheus.Gauge

	// Repository
	repositoryQueryLatency *prometheus.HistogramVec

	// Repair queue and workers
	repairRequests          *prometheus.CounterVec
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueued           prometheus.Counter
	queueDequeued           prometheus.Counter
	queueEnqueueErrors      *prometheus.CounterVec
	workerCount             prometheus.Gauge
	workerActive            prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByComponent   *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

// DefaultLatencyBuckets are the millisecond buckets of latency histograms.
var DefaultLatencyBuckets = []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure replaces the global manager and its registry with one built from
// opts. Call it once at startup, before metrics are recorded or served.
func Configure(opts ...Option) {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(reg))...)
	customRegistry = reg
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "carwise",
		subsystem:        "",
		histogramBuckets: DefaultLatencyBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.assessments = auto.NewCounterVec(m.counterOpts("assessments_total",
		"Reliability assessments computed, by recommendation tier"), []string{"tier"})
	m.assessmentScore = auto.NewHistogram(m.histogramOpts("assessment_score",
		"Distribution of reliability scores", prometheus.LinearBuckets(0, 10, 11)))
	m.priceEstimates = auto.NewCounter(m.counterOpts("price_estimates_total",
		"Price estimates computed"))
	m.estimatedPrice = auto.NewHistogram(m.histogramOpts("estimated_price_eur",
		"Distribution of estimated prices in EUR", prometheus.ExponentialBuckets(1000, 2, 8)))
	m.validationFailures = auto.NewCounterVec(m.counterOpts("validation_failures_total",
		"Rejected inputs, by operation"), []string{"operation"})

	m.diagnoses = auto.NewCounterVec(m.counterOpts("diagnoses_total",
		"Diagnoses served, by mode (live or mock)"), []string{"mode"})
	m.upstreamFallbacks = auto.NewCounter(m.counterOpts("upstream_fallbacks_total",
		"Upstream failures answered from the local diagnoser"))
	m.upstreamLatency = auto.NewHistogram(m.histogramOpts("upstream_latency_milliseconds",
		"Latency of upstream diagnosis calls", m.histogramBuckets))

	m.garageSearches = auto.NewCounter(m.counterOpts("garage_searches_total",
		"Garage directory searches"))
	m.garageSearchResults = auto.NewHistogram(m.histogramOpts("garage_search_results",
		"Number of garages returned per search", prometheus.LinearBuckets(0, 5, 6)))
	m.garagesTotal = auto.NewGauge(m.gaugeOpts("garages",
		"Garages in the directory"))

	m.repositoryQueryLatency = auto.NewHistogramVec(m.histogramOpts("repository_query_latency_milliseconds",
		"Latency of store operations", m.histogramBuckets), []string{"operation"})

	m.repairRequests = auto.NewCounterVec(m.counterOpts("repair_requests_total",
		"Repair requests, by outcome"), []string{"outcome"})
	m.queueSize = auto.NewGauge(m.gaugeOpts("repair_queue_size",
		"Repair jobs waiting to be quoted"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("repair_queue_capacity",
		"Repair queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("repair_queue_enqueued_total",
		"Repair jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("repair_queue_dequeued_total",
		"Repair jobs handed to workers"))
	m.queueEnqueueErrors = auto.NewCounterVec(m.counterOpts("repair_queue_enqueue_errors_total",
		"Repair jobs rejected by the queue, by reason"), []string{"reason"})
	m.workerCount = auto.NewGauge(m.gaugeOpts("repair_workers",
		"Configured repair workers"))
	m.workerActive = auto.NewGauge(m.gaugeOpts("repair_workers_active",
		"Repair workers currently quoting a job"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("repair_worker_latency_milliseconds",
		"Time to quote one repair job", m.histogramBuckets))
	m.workerErrors = auto.NewCounter(m.counterOpts("repair_worker_errors_total",
		"Repair jobs that failed to quote"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("http_errors_total",
		"HTTP error responses by endpoint, method and error type"), []string{"endpoint", "method", "error_type"})
	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_total",
		"Errors by component and type"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes",
		"Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines",
		"Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds",
		"Average GC pause in milliseconds", m.histogramBuckets))
}

// Estimator metrics.

// RecordAssessment counts an assessment and observes its score.
func RecordAssessment(tier string, score int) {
	globalManager.assessments.WithLabelValues(tier).Inc()
	globalManager.assessmentScore.Observe(float64(score))
}

// RecordPriceEstimate counts a price estimate and observes its value.
func RecordPriceEstimate(price float64) {
	globalManager.priceEstimates.Inc()
	globalManager.estimatedPrice.Observe(price)
}

// RecordValidationFailure counts a rejected input for operation.
func RecordValidationFailure(operation string) {
	globalManager.validationFailures.WithLabelValues(operation).Inc()
}

// Diagnosis metrics.

// RecordDiagnosis counts a diagnosis served in mode.
func RecordDiagnosis(mode string) {
	globalManager.diagnoses.WithLabelValues(mode).Inc()
}

// RecordUpstreamFallback counts an upstream failure answered locally.
func RecordUpstreamFallback() {
	globalManager.upstreamFallbacks.Inc()
}

// RecordUpstreamLatency observes one upstream call.
func RecordUpstreamLatency(latencyMs float64) {
	globalManager.upstreamLatency.Observe(latencyMs)
}

// Garage metrics.

// RecordGarageSearch counts a search and its result size.
func RecordGarageSearch(results int) {
	globalManager.garageSearches.Inc()
	globalManager.garageSearchResults.Observe(float64(results))
}

// UpdateGaragesTotal sets the directory size.
func UpdateGaragesTotal(count int) {
	globalManager.garagesTotal.Set(float64(count))
}

// RecordRepositoryQueryLatency observes the latency of a store operation.
func RecordRepositoryQueryLatency(operation string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// Repair metrics.

// RecordRepairRequest counts a repair request by outcome
// (accepted, duplicate, rejected, quoted, failed).
func RecordRepairRequest(outcome string) {
	globalManager.repairRequests.WithLabelValues(outcome).Inc()
}

// UpdateQueueSize sets the current repair queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the repair queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a job handed to a worker.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the configured number of workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// IncWorkerActive marks a worker busy.
func IncWorkerActive() { globalManager.workerActive.Inc() }

// DecWorkerActive marks a worker idle.
func DecWorkerActive() { globalManager.workerActive.Dec() }

// RecordWorkerProcessingLatency observes the time spent quoting a job.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a job that failed to quote.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// HTTP metrics.

// RecordHTTPRequest counts a request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint counts an error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent counts an internal error.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry holding carwise metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
