// Package metrics provides Prometheus metrics for the hoopsight forecast
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the service exports.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  prometheus.Registerer

	// Replay / filter health
	gamesReplayed     prometheus.Counter
	gamesRejected     *prometheus.CounterVec
	covarianceRepairs prometheus.Counter
	replayDuration    prometheus.Histogram
	snapshotSwaps     prometheus.Counter
	trackedTeams      prometheus.Gauge

	// Prediction quality of service
	predictions        *prometheus.CounterVec
	regressorFallbacks *prometheus.CounterVec
	regressorLatency   prometheus.Histogram
	predictionLatency  prometheus.Histogram

	// Ingestion pipeline
	resultsDuplicate  prometheus.Counter
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueEnqueueError *prometheus.CounterVec
	workerErrors      prometheus.Counter

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "hoopsight",
		subsystem: "core",
		buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initialize()
	return m
}

func (m *Manager) initialize() {
	factory := promauto.With(m.registry)

	m.gamesReplayed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "games_replayed_total",
		Help: "Completed games applied to team filters.",
	})
	m.gamesRejected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "games_rejected_total",
		Help: "Game records rejected during replay, by reason.",
	}, []string{"reason"})
	m.covarianceRepairs = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "covariance_repairs_total",
		Help: "Covariance matrices repaired after a degenerate update.",
	})
	m.replayDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "replay_duration_ms",
		Help:    "Full history replay duration in milliseconds.",
		Buckets: m.buckets,
	})
	m.snapshotSwaps = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snapshot_swaps_total",
		Help: "Atomic league-state snapshot replacements.",
	})
	m.trackedTeams = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "tracked_teams",
		Help: "Teams with an active filter.",
	})

	m.predictions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "predictions_total",
		Help: "Predictions served, by source.",
	}, []string{"source"})
	m.regressorFallbacks = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "regressor_fallbacks_total",
		Help: "Hybrid predictions degraded to filter-only, by reason.",
	}, []string{"reason"})
	m.regressorLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "regressor_latency_ms",
		Help:    "Auxiliary regressor call latency in milliseconds.",
		Buckets: m.buckets,
	})
	m.predictionLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "prediction_latency_ms",
		Help:    "End-to-end prediction latency in milliseconds.",
		Buckets: m.buckets,
	})

	m.resultsDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "results_duplicate_total",
		Help: "Submitted results dropped as duplicates.",
	})
	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "result_queue_size",
		Help: "Results waiting to be applied.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "result_queue_capacity",
		Help: "Configured result queue capacity.",
	})
	m.queueEnqueueError = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "result_queue_enqueue_errors_total",
		Help: "Enqueue failures, by reason.",
	}, []string{"reason"})
	m.workerErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_errors_total",
		Help: "Result-apply worker failures.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name: "requests_total",
		Help: "HTTP requests, by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name:    "request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: m.buckets,
	}, []string{"endpoint", "method", "status"})
}

// Package-level helpers against the global manager.

// RecordGameReplayed counts one applied game.
func RecordGameReplayed() { globalManager.gamesReplayed.Inc() }

// RecordGameRejected counts a rejected game record.
func RecordGameRejected(reason string) {
	globalManager.gamesRejected.WithLabelValues(reason).Inc()
}

// RecordCovarianceRepair counts a covariance repair.
func RecordCovarianceRepair() { globalManager.covarianceRepairs.Inc() }

// RecordReplayDuration observes a full replay in milliseconds.
func RecordReplayDuration(ms float64) { globalManager.replayDuration.Observe(ms) }

// RecordSnapshotSwap counts an atomic arena replacement.
func RecordSnapshotSwap() { globalManager.snapshotSwaps.Inc() }

// UpdateTrackedTeams sets the number of teams with an active filter.
func UpdateTrackedTeams(n int) { globalManager.trackedTeams.Set(float64(n)) }

// RecordPrediction counts one served prediction by source.
func RecordPrediction(source string) {
	globalManager.predictions.WithLabelValues(source).Inc()
}

// RecordRegressorFallback counts a degradation to filter-only output.
func RecordRegressorFallback(reason string) {
	globalManager.regressorFallbacks.WithLabelValues(reason).Inc()
}

// RecordRegressorLatency observes one regressor call in milliseconds.
func RecordRegressorLatency(ms float64) { globalManager.regressorLatency.Observe(ms) }

// RecordPredictionLatency observes one prediction in milliseconds.
func RecordPredictionLatency(ms float64) { globalManager.predictionLatency.Observe(ms) }

// RecordResultDuplicate counts a duplicate result submission.
func RecordResultDuplicate() { globalManager.resultsDuplicate.Inc() }

// UpdateQueueSize sets the pending result count.
func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }

// RecordQueueEnqueueError counts a failed enqueue by reason.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueError.WithLabelValues(reason).Inc()
}

// RecordWorkerError counts a worker failure.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordHTTPRequest counts one request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one request's duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// GetRegistry returns the custom registry for the /healthz metrics handler.
func GetRegistry() *prometheus.Registry { return customRegistry }
