package spotlight

import "github.com/iliyamo/classic-spotlight/internal/model"

// ScoredCandidate is one (movie, screening) pair with its score.
type ScoredCandidate struct {
	MovieID     uint64
	ScreeningID uint64
	Score       int
}

// Score rates one screening of movie as seen from today.  movie must
// already be filtered: its city and genre bonuses are computed over all of
// its screenings.  Hard cooldown is not checked here.
func Score(movie model.CandidateMovie, screening model.CandidateScreening, today model.Date, cd Cooldown, rules Rules) int {
	w := rules.Weights
	score := 0

	daysOut := today.DaysUntil(model.DateOf(screening.StartsAt))
	switch {
	case daysOut >= rules.WindowMinDays && daysOut <= rules.NearbyMaxDays:
		score += w.Nearby
	case daysOut > rules.NearbyMaxDays && daysOut <= rules.WindowMaxDays:
		score += w.Upcoming
	}

	switch {
	case movie.ProductionYear < rules.DeepClassicThreshold:
		score += w.DeepClassic
	case movie.ProductionYear < rules.ClassicYearThreshold:
		score += w.Classic
	}

	if distinctCities(movie.Screenings) >= 2 {
		score += w.MultiCity
	}
	if len(movie.GenreIDs) >= 2 {
		score += w.MultiGenre
	}
	if screening.Subtitled {
		score += w.Subtitled
	}
	if cd.IsSoft(movie.ID) {
		score -= w.SoftCooldown
	}
	return score
}

// ScoreAll scores every screening of every movie not in the hard cooldown.
// Candidates keep the input order.  checked is the number of movies that
// were scored.
func ScoreAll(movies []model.CandidateMovie, today model.Date, cd Cooldown, rules Rules) (scored []ScoredCandidate, checked int) {
	for _, m := range movies {
		if cd.IsHard(m.ID) {
			continue
		}
		checked++
		for _, s := range m.Screenings {
			scored = append(scored, ScoredCandidate{
				MovieID:     m.ID,
				ScreeningID: s.ID,
				Score:       Score(m, s, today, cd, rules),
			})
		}
	}
	return scored, checked
}

// distinctCities counts known cities; 0 marks an unresolved cinema.
func distinctCities(screenings []model.CandidateScreening) int {
	seen := map[uint64]struct{}{}
	for _, s := range screenings {
		if s.CityID > 0 {
			seen[s.CityID] = struct{}{}
		}
	}
	return len(seen)
}
