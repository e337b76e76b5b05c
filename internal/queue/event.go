// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/classic-spotlight/internal/model"
)

// DecisionQueueName is the durable queue that carries DecisionRecordedEvent.
const DecisionQueueName = "spotlight.decided"

// DecisionRecordedEvent is published when a new daily decision is stored.
// Downstream consumers (post scheduler, audit log) use it without querying
// the database.
type DecisionRecordedEvent struct {
	Date              string  `json:"date"`
	Published         bool    `json:"published"`
	MovieID           *uint64 `json:"movie_id"`
	ScreeningID       *uint64 `json:"screening_id"`
	Score             int     `json:"score"`
	Reason            string  `json:"reason"`
	CandidatesChecked int     `json:"candidates_checked"`
	RecordedAt        string  `json:"recorded_at"`
}

// NewDecisionRecordedEvent builds the event for d, stamped with at.
func NewDecisionRecordedEvent(d model.Decision, at time.Time) DecisionRecordedEvent {
	return DecisionRecordedEvent{
		Date:              d.Date.String(),
		Published:         d.Published,
		MovieID:           d.MovieID,
		ScreeningID:       d.ScreeningID,
		Score:             d.Score,
		Reason:            d.Reason,
		CandidatesChecked: d.CandidatesChecked,
		RecordedAt:        at.UTC().Format(time.RFC3339),
	}
}
