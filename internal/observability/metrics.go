// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scoring metrics
	SignalsScored  *prometheus.CounterVec
	HighScoreCount prometheus.Counter
	ScoreHistogram prometheus.Histogram
	ClustersFormed prometheus.Counter

	// Narrative metrics
	NarrativesCreated  prometheus.Counter
	NarrativesMatched  prometheus.Counter
	NarrativesFaded    prometheus.Counter
	NarrativesArchived prometheus.Counter
	ActiveNarratives   prometheus.Gauge
	ProposalsDetected  *prometheus.CounterVec

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "narrative_radar"
	}

	return &Metrics{
		// Scoring metrics
		SignalsScored: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "signals_scored_total",
			Help:      "Total number of signals scored by source",
		}, []string{"source"}),
		HighScoreCount: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "high_score_signals_total",
			Help:      "Total number of signals scoring above 70",
		}),
		ScoreHistogram: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "signal_score",
			Help:      "Distribution of composite signal scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		ClustersFormed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "clusters_formed_total",
			Help:      "Total number of signal pre-clusters formed",
		}),

		// Narrative metrics
		NarrativesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "narratives",
			Name:      "created_total",
			Help:      "Total number of new narratives created",
		}),
		NarrativesMatched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "narratives",
			Name:      "matched_total",
			Help:      "Total number of proposals merged into existing narratives",
		}),
		NarrativesFaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "narratives",
			Name:      "faded_total",
			Help:      "Total number of narratives faded for lack of signals",
		}),
		NarrativesArchived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "narratives",
			Name:      "archived_total",
			Help:      "Total number of narratives archived",
		}),
		ActiveNarratives: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "narratives",
			Name:      "active",
			Help:      "Current number of ACTIVE narratives",
		}),
		ProposalsDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "narratives",
			Name:      "proposals_total",
			Help:      "Total number of narrative proposals by confidence",
		}, []string{"confidence"}),

		// Pipeline metrics
		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline phase duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"phase"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSignalScored records one scored signal and its composite score.
func RecordSignalScored(source string, score float64) {
	DefaultMetrics.SignalsScored.WithLabelValues(source).Inc()
	DefaultMetrics.ScoreHistogram.Observe(score)
	if score > 70 {
		DefaultMetrics.HighScoreCount.Inc()
	}
}

// RecordClusters increments the cluster counter by the number formed.
func RecordClusters(n int) {
	DefaultMetrics.ClustersFormed.Add(float64(n))
}

// RecordProposal counts one detected proposal by confidence.
func RecordProposal(confidence string) {
	DefaultMetrics.ProposalsDetected.WithLabelValues(confidence).Inc()
}

// RecordMergeOutcome records the lifecycle changes of one merge.
func RecordMergeOutcome(created, matched, faded, archived int) {
	DefaultMetrics.NarrativesCreated.Add(float64(created))
	DefaultMetrics.NarrativesMatched.Add(float64(matched))
	DefaultMetrics.NarrativesFaded.Add(float64(faded))
	DefaultMetrics.NarrativesArchived.Add(float64(archived))
}

// UpdateActiveNarratives updates the active narratives gauge.
func UpdateActiveNarratives(n int) {
	DefaultMetrics.ActiveNarratives.Set(float64(n))
}

// RecordPipelineRun records one pipeline run outcome.
func RecordPipelineRun(status string) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(status).Inc()
}

// RecordPhaseDuration records how long a pipeline phase took.
func RecordPhaseDuration(phase string, seconds float64) {
	DefaultMetrics.PipelineDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordDBQuery records a database query duration.
func RecordDBQuery(database, operation string, seconds float64) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
}

// RecordDBError records a database query error.
func RecordDBError(database, operation string) {
	DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
}

// MarkSuccessfulRun sets the last successful run timestamp.
func MarkSuccessfulRun(unixSeconds int64) {
	DefaultMetrics.LastSuccessfulRun.Set(float64(unixSeconds))
}
