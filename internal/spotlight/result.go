package spotlight

import (
	"errors"

	"github.com/iliyamo/classic-spotlight/internal/model"
)

// ErrStaleDecision is returned when a stored published decision points at
// a movie or screening that no longer resolves.  It wraps the lookup error.
var ErrStaleDecision = errors.New("stored decision references a missing movie or screening")

// CandidateResult is the answer for one day.  Published results carry
// Score, Movie and Screening; skipped results carry Meta.
type CandidateResult struct {
	Publish   bool                    `json:"publish"`
	Date      model.Date              `json:"date"`
	Score     *int                    `json:"score,omitempty"`
	Reason    string                  `json:"reason"`
	Movie     *model.MovieHero        `json:"movie,omitempty"`
	Screening *model.ScreeningSummary `json:"screening,omitempty"`
	Meta      *SkipMeta               `json:"meta,omitempty"`
}

// SkipMeta explains a skipped day.  BestScore is null when nothing scored
// above zero.
type SkipMeta struct {
	CandidatesChecked int  `json:"candidatesChecked"`
	BestScore         *int `json:"bestScore"`
	MinScore          int  `json:"minScore"`
}

// skippedResult builds the result of a skipped decision.  Computed and
// stored decisions go through here so both yield the same value.
func skippedResult(d model.Decision, minScore int) *CandidateResult {
	meta := &SkipMeta{CandidatesChecked: d.CandidatesChecked, MinScore: minScore}
	if d.Score > 0 {
		best := d.Score
		meta.BestScore = &best
	}
	return &CandidateResult{
		Publish: false,
		Date:    d.Date,
		Reason:  model.ReasonNoHighQuality,
		Meta:    meta,
	}
}

func publishedResult(d model.Decision, movie *model.MovieHero, screening *model.ScreeningSummary) *CandidateResult {
	score := d.Score
	return &CandidateResult{
		Publish:   true,
		Date:      d.Date,
		Score:     &score,
		Reason:    model.ReasonHighQuality,
		Movie:     movie,
		Screening: screening,
	}
}
