// Package metrics provides Prometheus metrics for the podium scoring service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Record kinds reported by the records gauge.
const (
	KindCompetitions    = "competitions"
	KindGroups          = "groups"
	KindEvents          = "events"
	KindAthletes        = "athletes"
	KindResults         = "results"
	KindPersonalRecords = "personal_records"
	KindOfficialRecords = "official_records"
)

// Manager owns the Prometheus collectors of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Computations
	leaderboardsComputed *prometheus.CounterVec
	leaderboardLatency   prometheus.Histogram
	rankingsComputed     *prometheus.CounterVec
	rankingLatency       prometheus.Histogram

	// Data quality
	unparseablePerformances *prometheus.CounterVec
	invalidRanks            prometheus.Counter
	missingReferences       *prometheus.CounterVec

	// Store
	recordsTotal      *prometheus.GaugeVec
	storeQueryLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "scoring",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.leaderboardsComputed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leaderboards_computed_total",
		Help:        "Total number of leaderboards computed by scope (group or competition) and outcome",
		ConstLabels: labels,
	}, []string{"kind", "outcome"})

	m.leaderboardLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leaderboard_latency_milliseconds",
		Help:        "Leaderboard computation latency in milliseconds, store reads included",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.rankingsComputed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rankings_computed_total",
		Help:        "Total number of continental rankings computed by scope",
		ConstLabels: labels,
	}, []string{"scope"})

	m.rankingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "ranking_latency_milliseconds",
		Help:        "Continental ranking computation latency in milliseconds, store reads included",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.unparseablePerformances = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "performances_unparseable_total",
		Help:        "Performance texts that did not parse to a number, by source",
		ConstLabels: labels,
	}, []string{"source"})

	m.invalidRanks = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "invalid_ranks_total",
		Help:        "Results carrying a rank below 1",
		ConstLabels: labels,
	})

	m.missingReferences = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "missing_references_total",
		Help:        "Personal records with no official record in the requested scope",
		ConstLabels: labels,
	}, []string{"scope"})

	m.recordsTotal = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records",
		Help:        "Number of stored records by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.storeQueryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_query_latency_milliseconds",
		Help:        "Record store query latency in milliseconds by operation",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"operation"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordLeaderboardComputed counts a leaderboard computation and its latency.
// kind is "group" or "competition"; outcome is "ok" or "error".
func (m *Manager) RecordLeaderboardComputed(kind, outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.leaderboardsComputed.WithLabelValues(kind, outcome).Inc()
	m.leaderboardLatency.Observe(latencyMs)
}

// RecordRankingComputed counts a continental ranking computation and its latency.
func (m *Manager) RecordRankingComputed(scope string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.rankingsComputed.WithLabelValues(scope).Inc()
	m.rankingLatency.Observe(latencyMs)
}

// RecordUnparseablePerformance counts n unparseable texts from source
// ("result", "personal_record" or "official_record").
func (m *Manager) RecordUnparseablePerformance(source string, n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.unparseablePerformances.WithLabelValues(source).Add(float64(n))
}

// RecordInvalidRank counts one result with a rank below 1.
func (m *Manager) RecordInvalidRank() {
	if !m.enabled {
		return
	}
	m.invalidRanks.Inc()
}

// RecordMissingReference counts n personal records lacking a reference in scope.
func (m *Manager) RecordMissingReference(scope string, n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.missingReferences.WithLabelValues(scope).Add(float64(n))
}

// UpdateRecordsTotal sets the stored record count of kind.
func (m *Manager) UpdateRecordsTotal(kind string, count int) {
	if !m.enabled {
		return
	}
	m.recordsTotal.WithLabelValues(kind).Set(float64(count))
}

// RecordStoreQueryLatency observes a store read of operation in milliseconds.
func (m *Manager) RecordStoreQueryLatency(operation string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.storeQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordHTTPRequest counts an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordLeaderboardComputed records on the global manager.
func RecordLeaderboardComputed(kind, outcome string, latencyMs float64) {
	globalManager.RecordLeaderboardComputed(kind, outcome, latencyMs)
}

// RecordRankingComputed records on the global manager.
func RecordRankingComputed(scope string, latencyMs float64) {
	globalManager.RecordRankingComputed(scope, latencyMs)
}

// RecordUnparseablePerformance records on the global manager.
func RecordUnparseablePerformance(source string, n int) {
	globalManager.RecordUnparseablePerformance(source, n)
}

// RecordInvalidRank records on the global manager.
func RecordInvalidRank() {
	globalManager.RecordInvalidRank()
}

// RecordMissingReference records on the global manager.
func RecordMissingReference(scope string, n int) {
	globalManager.RecordMissingReference(scope, n)
}

// UpdateRecordsTotal records on the global manager.
func UpdateRecordsTotal(kind string, count int) {
	globalManager.UpdateRecordsTotal(kind, count)
}

// RecordStoreQueryLatency records on the global manager.
func RecordStoreQueryLatency(operation string, latencyMs float64) {
	globalManager.RecordStoreQueryLatency(operation, latencyMs)
}

// RecordHTTPRequest records on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration records on the global manager.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, durationMs)
}

// GetRegistry returns the custom Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the custom registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
