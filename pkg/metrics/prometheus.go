// Package metrics provides Prometheus metrics for the lineup service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the lineup service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Analysis
	analyses         prometheus.Counter
	analysisLatency  prometheus.Histogram
	playersRequested prometheus.Histogram
	playersSelected  prometheus.Histogram
	recommendations  *prometheus.CounterVec
	unknownNames     prometheus.Counter
	playerScore      *prometheus.HistogramVec

	// Snapshot
	snapshotPlayers        prometheus.Gauge
	snapshotReloads        *prometheus.CounterVec
	snapshotReloadDuration prometheus.Histogram
	snapshotLastUnix       prometheus.Gauge

	// History pipeline
	queueSize           prometheus.Gauge
	queueCapacity       prometheus.Gauge
	queueEnqueued       prometheus.Counter
	queueDequeued       prometheus.Counter
	queueDropped        prometheus.Counter
	workerCount         prometheus.Gauge
	workerLatency       prometheus.Histogram
	workerErrors        prometheus.Counter
	historyRecordsSaved prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByComponent   *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lineup",
		subsystem:        "analysis",
		histogramBuckets: prometheus.DefBuckets,
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.analyses = m.counter("analyses_total", "Total number of completed analyses")
	m.analysisLatency = m.histogram("latency_milliseconds", "Analysis latency in milliseconds", m.histogramBuckets)
	m.playersRequested = m.histogram("players_requested", "Number of names per analysis request",
		prometheus.LinearBuckets(0, 2, 10))
	m.playersSelected = m.histogram("players_selected", "Number of players matched per analysis",
		prometheus.LinearBuckets(0, 2, 10))
	m.recommendations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "recommendations_total", Help: "Recommendations issued by label",
	}, []string{"recommendation"})
	m.unknownNames = m.counter("unknown_names_total", "Requested names that matched no player")
	m.playerScore = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "player_score", Help: "Composite scores by position",
		Buckets: prometheus.LinearBuckets(0, 5, 8),
	}, []string{"position"})

	m.snapshotPlayers = m.gauge("snapshot_players", "Number of players in the active snapshot")
	m.snapshotReloads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snapshot_reloads_total", Help: "Snapshot reload attempts by source and result",
	}, []string{"source", "result"})
	m.snapshotReloadDuration = m.histogram("snapshot_reload_duration_milliseconds",
		"Snapshot reload duration in milliseconds", m.histogramBuckets)
	m.snapshotLastUnix = m.gauge("snapshot_last_unix", "Unix time of the last successful snapshot publish")

	m.queueSize = m.gauge("history_queue_size", "Current history queue depth")
	m.queueCapacity = m.gauge("history_queue_capacity", "History queue capacity")
	m.queueEnqueued = m.counter("history_queue_enqueue_total", "History records enqueued")
	m.queueDequeued = m.counter("history_queue_dequeue_total", "History records dequeued")
	m.queueDropped = m.counter("history_queue_dropped_total", "History records dropped because the queue was full")
	m.workerCount = m.gauge("history_worker_count", "Number of history workers")
	m.workerLatency = m.histogram("history_worker_latency_milliseconds",
		"History write latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("history_worker_errors_total", "History write failures")
	m.historyRecordsSaved = m.counter("history_records_saved_total", "History records persisted")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total", Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_request_duration_milliseconds", Help: "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_by_component_total", Help: "Total number of errors by component",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordAnalysis records one completed analysis.
func RecordAnalysis(requested, selected int, latencyMs float64) {
	globalManager.analyses.Inc()
	globalManager.analysisLatency.Observe(latencyMs)
	globalManager.playersRequested.Observe(float64(requested))
	globalManager.playersSelected.Observe(float64(selected))
}

// RecordRecommendation counts one issued label and its score.
func RecordRecommendation(recommendation, position string, score float64) {
	globalManager.recommendations.WithLabelValues(recommendation).Inc()
	globalManager.playerScore.WithLabelValues(position).Observe(score)
}

// RecordUnknownNames counts requested names that matched nothing.
func RecordUnknownNames(n int) {
	if n > 0 {
		globalManager.unknownNames.Add(float64(n))
	}
}

// UpdateSnapshotPlayers sets the active snapshot size.
func UpdateSnapshotPlayers(count int) {
	globalManager.snapshotPlayers.Set(float64(count))
}

// RecordSnapshotReload records a reload attempt. result is "ok" or "error".
func RecordSnapshotReload(source, result string, durationMs float64, unixTime int64) {
	globalManager.snapshotReloads.WithLabelValues(source, result).Inc()
	globalManager.snapshotReloadDuration.Observe(durationMs)
	if result == "ok" {
		globalManager.snapshotLastUnix.Set(float64(unixTime))
	}
}

// UpdateQueueSize sets the current history queue depth.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the history queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueDropped increments the dropped-record counter.
func RecordQueueDropped() {
	globalManager.queueDropped.Inc()
}

// UpdateWorkerCount sets the number of history workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records one history write.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHistorySaved increments the persisted-record counter.
func RecordHistorySaved() {
	globalManager.historyRecordsSaved.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap memory in use.
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

// GetRegistry returns the registry that holds the service metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
