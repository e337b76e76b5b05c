package model

import "time"

// Reason codes stored on a Decision and returned to callers.
const (
	ReasonHighQuality   = "HIGH_QUALITY_CANDIDATE"
	ReasonNoHighQuality = "NO_HIGH_QUALITY_CANDIDATE"
)

// Decision is the at-most-one-per-day outcome of candidate selection.  It
// maps to a row in spotlight_decisions, keyed by post_date.  Rows are
// written once and never updated or deleted.
//
// Fields:
//  ID                – spotlight_decisions.id
//  Date              – post_date (unique)
//  Published         – whether a candidate was chosen
//  MovieID           – chosen movie (nil when skipped)
//  ScreeningID       – chosen screening (nil when skipped)
//  Score             – winning score, or the best score seen when skipped (0 if none)
//  Reason            – ReasonHighQuality or ReasonNoHighQuality
//  CandidatesChecked – movies that were eligible after the hard cooldown
//  CreatedAt         – row creation time
type Decision struct {
	ID                uint64
	Date              Date
	Published         bool
	MovieID           *uint64
	ScreeningID       *uint64
	Score             int
	Reason            string
	CandidatesChecked int
	CreatedAt         time.Time
}

// CooldownRecord is a movie that was published on a given day.
type CooldownRecord struct {
	MovieID     uint64
	PublishedOn Date
}
