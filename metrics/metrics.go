// Package metrics provides Prometheus metrics for the analysis service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "speech_feedback"

// Metrics holds all Prometheus collectors of the service.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	UpstreamErrors   *prometheus.CounterVec

	GrammarScore prometheus.Histogram
	FinalScore   prometheus.Histogram
	FillerWords  prometheus.Counter
	WPM          prometheus.Histogram

	PublishTotal  *prometheus.CounterVec
	PublishErrors prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	scoreBuckets := prometheus.LinearBuckets(0, 10, 11)
	return &Metrics{
		AnalysesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of analyses by outcome",
		}, []string{"outcome"}),
		AnalysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end duration of an analysis run",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		UpstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Errors returned by external collaborators",
		}, []string{"collaborator"}),
		GrammarScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grammar_score",
			Help:      "Distribution of grammar scores",
			Buckets:   scoreBuckets,
		}),
		FinalScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_score",
			Help:      "Distribution of final scores",
			Buckets:   scoreBuckets,
		}),
		FillerWords: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filler_words_total",
			Help:      "Filler words detected across all analyses",
		}),
		WPM: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "words_per_minute",
			Help:      "Distribution of speaking pace",
			Buckets:   []float64{60, 90, 120, 150, 180, 210, 240},
		}),
		PublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_published_total",
			Help:      "Feedback events handed to the publisher",
		}, []string{"mode"}),
		PublishErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_publish_errors_total",
			Help:      "Feedback events that failed to publish",
		}),
	}
}

// RecordAnalysis records a successful analysis and its scores.
func (m *Metrics) RecordAnalysis(seconds, grammar, final, wpm float64, fillers int) {
	m.AnalysesTotal.WithLabelValues("success").Inc()
	m.AnalysisDuration.Observe(seconds)
	m.GrammarScore.Observe(grammar)
	m.FinalScore.Observe(final)
	m.WPM.Observe(wpm)
	m.FillerWords.Add(float64(fillers))
}

// RecordFailure records an aborted analysis. collaborator is empty when the
// failure was not caused by an external service.
func (m *Metrics) RecordFailure(seconds float64, collaborator string) {
	m.AnalysesTotal.WithLabelValues("failure").Inc()
	m.AnalysisDuration.Observe(seconds)
	if collaborator != "" {
		m.UpstreamErrors.WithLabelValues(collaborator).Inc()
	}
}

// RecordPublish records a publish attempt.
func (m *Metrics) RecordPublish(mode string, err error) {
	m.PublishTotal.WithLabelValues(mode).Inc()
	if err != nil {
		m.PublishErrors.Inc()
	}
}
