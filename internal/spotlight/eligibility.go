package spotlight

import (
	"sort"

	"github.com/iliyamo/classic-spotlight/internal/model"
)

// FilterEligible keeps classic movies with an image and, for each, only the
// screenings whose local day lies in window.  Movies left without
// screenings are dropped.  The result is ordered by movie id and each
// movie's screenings by start time then id; ties in Select depend on it.
// The input is not modified.
func FilterEligible(movies []model.CandidateMovie, window model.Window, rules Rules) []model.CandidateMovie {
	out := make([]model.CandidateMovie, 0, len(movies))
	for _, m := range movies {
		if !m.HasImage || m.ProductionYear >= rules.ClassicYearThreshold {
			continue
		}
		var screenings []model.CandidateScreening
		for _, s := range m.Screenings {
			if window.Contains(model.DateOf(s.StartsAt)) {
				screenings = append(screenings, s)
			}
		}
		if len(screenings) == 0 {
			continue
		}
		sort.SliceStable(screenings, func(i, j int) bool {
			a, b := screenings[i], screenings[j]
			if !a.StartsAt.Equal(b.StartsAt) {
				return a.StartsAt.Before(b.StartsAt)
			}
			return a.ID < b.ID
		})
		m.Screenings = screenings
		m.GenreIDs = append([]uint64(nil), m.GenreIDs...)
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
