// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decision outcomes and sources used as label values.
const (
	OutcomePublished = "published"
	OutcomeSkipped   = "skipped"

	SourceComputed = "computed"
	SourceCache    = "cache"
)

var (
	// DecisionsTotal counts resolved candidate requests by outcome and by
	// whether the decision was computed or read back from storage.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotlight_decisions_total",
			Help: "Resolved spotlight decisions by outcome and source",
		},
		[]string{"outcome", "source"},
	)

	// BestScore observes the best score of each computed decision.
	BestScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spotlight_best_score",
			Help:    "Best candidate score per computed decision",
			Buckets: []float64{0, 20, 40, 50, 60, 70, 80, 90, 100, 120},
		},
	)

	// CandidatesChecked is the number of movies scored in the latest computation.
	CandidatesChecked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spotlight_candidates_checked",
			Help: "Movies that passed the hard cooldown in the latest computed decision",
		},
	)

	// PublishErrorsTotal counts decision events that could not be delivered.
	PublishErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spotlight_publish_errors_total",
			Help: "Decision events that failed to reach the message broker",
		},
	)
)

// RecordDecision updates the decision collectors.  Score and candidate
// gauges only move for computed decisions.
func RecordDecision(published bool, source string, bestScore, candidatesChecked int) {
	outcome := OutcomeSkipped
	if published {
		outcome = OutcomePublished
	}
	DecisionsTotal.WithLabelValues(outcome, source).Inc()
	if source != SourceComputed {
		return
	}
	BestScore.Observe(float64(bestScore))
	CandidatesChecked.Set(float64(candidatesChecked))
}
