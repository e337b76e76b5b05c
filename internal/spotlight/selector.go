package spotlight

// Selection is the outcome of Select.  Best is nil when there were no
// candidates.
type Selection struct {
	Best    *ScoredCandidate
	Publish bool
}

// BestScore returns the best score seen, or 0 with no candidates.
func (s Selection) BestScore() int {
	if s.Best == nil {
		return 0
	}
	return s.Best.Score
}

// Select picks the highest scoring candidate; the earliest one wins a tie.
// Publish is set only when the best score reaches minScore.
func Select(candidates []ScoredCandidate, minScore int) Selection {
	var sel Selection
	for i := range candidates {
		if sel.Best == nil || candidates[i].Score > sel.Best.Score {
			c := candidates[i]
			sel.Best = &c
		}
	}
	sel.Publish = sel.Best != nil && sel.Best.Score >= minScore
	return sel
}
