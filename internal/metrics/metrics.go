// Package metrics provides the centralized Prometheus metrics registry for the analysis pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RacesAnalyzedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keirin_edge",
		Name:      "races_analyzed_total",
		Help:      "Total number of races run through the analysis pipeline",
	})
	RecommendationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "keirin_edge",
		Name:      "recommendations_total",
		Help:      "Total number of recommendations produced, by archetype",
	}, []string{"archetype"})
	AnalysisFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keirin_edge",
		Name:      "analysis_failures_total",
		Help:      "Total number of race analyses aborted by infrastructure errors",
	})
	SettlementRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keirin_edge",
		Name:      "settlement_runs_total",
		Help:      "Total number of settlement batch runs",
	})
	SettledRacesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keirin_edge",
		Name:      "settled_races_total",
		Help:      "Total number of races settled",
	})
	SettlementErrorRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keirin_edge",
		Name:      "settlement_error_rows_total",
		Help:      "Total number of settlement rows flagged with malformed tickets",
	})
	ResultFetchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keirin_edge",
		Name:      "result_fetches_total",
		Help:      "Total number of official result fetches",
	})
	ResultFetchFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "keirin_edge",
		Name:      "result_fetch_failures_total",
		Help:      "Total number of failed official result fetches",
	})
)

// Gauge metrics
var (
	HitRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "keirin_edge",
		Name:      "hit_rate_percent",
		Help:      "Hit rate over the last settlement batch",
	})
	RecoveryRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "keirin_edge",
		Name:      "recovery_rate_percent",
		Help:      "Recovery rate over the last settlement batch",
	})
	PendingSettlements = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "keirin_edge",
		Name:      "pending_settlements",
		Help:      "Races awaiting official results in the last settlement batch",
	})
)

// Histogram metrics
var (
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "keirin_edge",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of a single race analysis in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	SettlementRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "keirin_edge",
		Name:      "settlement_run_duration_seconds",
		Help:      "Duration of settlement batch runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(RacesAnalyzedTotal)
		registry.MustRegister(RecommendationsTotal)
		registry.MustRegister(AnalysisFailuresTotal)
		registry.MustRegister(SettlementRunsTotal)
		registry.MustRegister(SettledRacesTotal)
		registry.MustRegister(SettlementErrorRowsTotal)
		registry.MustRegister(ResultFetchesTotal)
		registry.MustRegister(ResultFetchFailuresTotal)

		// Register gauge metrics
		registry.MustRegister(HitRate)
		registry.MustRegister(RecoveryRate)
		registry.MustRegister(PendingSettlements)

		// Register histogram metrics
		registry.MustRegister(AnalysisDuration)
		registry.MustRegister(SettlementRunDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRaceAnalyzed records one completed race analysis.
func RecordRaceAnalyzed(archetype string, durationSeconds float64) {
	RacesAnalyzedTotal.Inc()
	RecommendationsTotal.WithLabelValues(archetype).Inc()
	AnalysisDuration.Observe(durationSeconds)
}

// RecordAnalysisFailure records an aborted race analysis.
func RecordAnalysisFailure() {
	AnalysisFailuresTotal.Inc()
}

// RecordSettlementRun records one settlement batch.
func RecordSettlementRun(settled, pending, errors int, hitRate, recoveryRate, durationSeconds float64) {
	SettlementRunsTotal.Inc()
	SettledRacesTotal.Add(float64(settled))
	SettlementErrorRowsTotal.Add(float64(errors))
	PendingSettlements.Set(float64(pending))
	HitRate.Set(hitRate)
	RecoveryRate.Set(recoveryRate)
	SettlementRunDuration.Observe(durationSeconds)
}

// RecordResultFetch records an official result fetch attempt.
func RecordResultFetch(success bool) {
	ResultFetchesTotal.Inc()
	if !success {
		ResultFetchFailuresTotal.Inc()
	}
}
