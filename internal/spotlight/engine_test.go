package spotlight

import (
	"testing"
	"time"

	"github.com/iliyamo/classic-spotlight/internal/model"
)

var today = model.NewDate(2024, 3, 10)

// at returns a wall-clock time offset days after today.
func at(offset, hour int) time.Time {
	return today.AddDays(offset).Time().Add(time.Duration(hour) * time.Hour)
}

func screening(id uint64, offset int, city uint64, subtitled bool) model.CandidateScreening {
	return model.CandidateScreening{ID: id, StartsAt: at(offset, 19), CityID: city, Subtitled: subtitled}
}

func movie(id uint64, year, genres int, screenings ...model.CandidateScreening) model.CandidateMovie {
	m := model.CandidateMovie{ID: id, ProductionYear: year, HasImage: true}
	for i := 0; i < genres; i++ {
		m.GenreIDs = append(m.GenreIDs, uint64(i+1))
	}
	for _, s := range screenings {
		s.MovieID = id
		m.Screenings = append(m.Screenings, s)
	}
	return m
}

func noCooldown() Cooldown {
	return ComputeCooldown(nil, today, DefaultRules())
}

func TestFilterEligible(t *testing.T) {
	rules := DefaultRules()
	noImage := movie(4, 1970, 1, screening(40, 2, 1, false))
	noImage.HasImage = false

	in := []model.CandidateMovie{
		movie(9, 1990, 1, screening(92, 5, 1, false), screening(91, 2, 1, false), screening(90, 2, 2, false)),
		movie(2, 2000, 1, screening(20, 2, 1, false)),
		noImage,
		movie(5, 1960, 1, screening(50, 0, 1, false), screening(51, 8, 1, false)),
		movie(3, 1975, 1, screening(30, 0, 1, false), screening(31, 7, 1, false), screening(32, 1, 1, false)),
	}

	got := FilterEligible(in, rules.Window(today), rules)

	if len(got) != 2 {
		t.Fatalf("got %d movies, want 2: %+v", len(got), got)
	}
	if got[0].ID != 3 || got[1].ID != 9 {
		t.Fatalf("order = [%d %d], want [3 9]", got[0].ID, got[1].ID)
	}
	wantIDs := map[uint64][]uint64{3: {32, 31}, 9: {90, 91, 92}}
	for _, m := range got {
		var ids []uint64
		for _, s := range m.Screenings {
			ids = append(ids, s.ID)
		}
		if len(ids) != len(wantIDs[m.ID]) {
			t.Fatalf("movie %d screenings = %v, want %v", m.ID, ids, wantIDs[m.ID])
		}
		for i := range ids {
			if ids[i] != wantIDs[m.ID][i] {
				t.Errorf("movie %d screenings = %v, want %v", m.ID, ids, wantIDs[m.ID])
				break
			}
		}
	}
	if len(in[4].Screenings) != 3 || in[0].Screenings[0].ID != 92 {
		t.Error("input was modified")
	}
}

func TestFilterEligibleWindowBoundsAreInclusive(t *testing.T) {
	rules := DefaultRules()
	in := []model.CandidateMovie{movie(1, 1950, 0,
		model.CandidateScreening{ID: 1, StartsAt: at(1, 0)},
		model.CandidateScreening{ID: 2, StartsAt: at(7, 23).Add(59 * time.Minute)},
		model.CandidateScreening{ID: 3, StartsAt: at(8, 0)},
	)}
	got := FilterEligible(in, rules.Window(today), rules)
	if len(got) != 1 || len(got[0].Screenings) != 2 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestComputeCooldown(t *testing.T) {
	rules := DefaultRules()
	rec := func(id uint64, daysAgo int) model.CooldownRecord {
		return model.CooldownRecord{MovieID: id, PublishedOn: today.AddDays(-daysAgo)}
	}

	tests := []struct {
		name     string
		history  []model.CooldownRecord
		movie    uint64
		wantHard bool
		wantSoft bool
	}{
		{"yesterday", []model.CooldownRecord{rec(1, 1)}, 1, true, false},
		{"hard boundary", []model.CooldownRecord{rec(1, 21)}, 1, true, false},
		{"twenty days ago", []model.CooldownRecord{rec(1, 20)}, 1, true, false},
		{"soft start", []model.CooldownRecord{rec(1, 22)}, 1, false, true},
		{"thirty days ago", []model.CooldownRecord{rec(1, 30)}, 1, false, true},
		{"soft end", []model.CooldownRecord{rec(1, 35)}, 1, false, true},
		{"beyond lookback", []model.CooldownRecord{rec(1, 36)}, 1, false, false},
		{"same day", []model.CooldownRecord{rec(1, 0)}, 1, false, false},
		{"both bands", []model.CooldownRecord{rec(1, 30), rec(1, 5)}, 1, true, false},
		{"zero movie id", []model.CooldownRecord{rec(0, 5)}, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cd := ComputeCooldown(tt.history, today, rules)
			if cd.IsHard(tt.movie) != tt.wantHard {
				t.Errorf("hard = %v, want %v", cd.IsHard(tt.movie), tt.wantHard)
			}
			if cd.IsSoft(tt.movie) != tt.wantSoft {
				t.Errorf("soft = %v, want %v", cd.IsSoft(tt.movie), tt.wantSoft)
			}
		})
	}
}

func TestScore(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name      string
		movie     model.CandidateMovie
		screening int
		want      int
	}{
		{
			name:  "1982 multi-city subtitled nearby",
			movie: movie(1, 1982, 2, screening(10, 2, 1, true), screening(11, 5, 2, false)),
			want:  40 + 10 + 20 + 10 + 10,
		},
		{
			name:      "same movie later screening",
			movie:     movie(1, 1982, 2, screening(10, 2, 1, true), screening(11, 5, 2, false)),
			screening: 1,
			want:      20 + 10 + 20 + 10,
		},
		{"nearby edge", movie(1, 1995, 1, screening(10, 3, 1, false)), 0, 40 + 10},
		{"upcoming edge", movie(1, 1995, 1, screening(10, 4, 1, false)), 0, 20 + 10},
		{"window end", movie(1, 1995, 1, screening(10, 7, 1, false)), 0, 20 + 10},
		{"deep classic", movie(1, 1979, 1, screening(10, 5, 1, false)), 0, 20 + 20},
		{"unknown cities do not count", movie(1, 1995, 1, screening(10, 5, 0, false), screening(11, 6, 0, false)), 0, 20 + 10},
		{"same city twice", movie(1, 1995, 1, screening(10, 5, 3, false), screening(11, 6, 3, false)), 0, 20 + 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.movie, tt.movie.Screenings[tt.screening], today, noCooldown(), rules)
			if got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreDeepClassicDifference(t *testing.T) {
	rules := DefaultRules()
	old := movie(1, 1960, 2, screening(10, 2, 1, true))
	newer := movie(1, 1995, 2, screening(10, 2, 1, true))

	a := Score(old, old.Screenings[0], today, noCooldown(), rules)
	b := Score(newer, newer.Screenings[0], today, noCooldown(), rules)
	if a-b != 10 {
		t.Errorf("1960 vs 1995 differ by %d, want 10", a-b)
	}
}

func TestScoreSoftCooldownPenalty(t *testing.T) {
	rules := DefaultRules()
	m := movie(1, 1960, 2, screening(10, 2, 1, true))
	soft := ComputeCooldown([]model.CooldownRecord{{MovieID: 1, PublishedOn: today.AddDays(-30)}}, today, rules)

	fresh := Score(m, m.Screenings[0], today, noCooldown(), rules)
	penalised := Score(m, m.Screenings[0], today, soft, rules)
	if fresh-penalised != 30 {
		t.Errorf("penalty = %d, want 30", fresh-penalised)
	}
}

func TestScoreAllSkipsHardCooldown(t *testing.T) {
	rules := DefaultRules()
	movies := []model.CandidateMovie{
		movie(1, 1960, 2, screening(10, 2, 1, true), screening(11, 3, 2, false)),
		movie(2, 1990, 1, screening(20, 5, 1, false)),
	}
	cd := ComputeCooldown([]model.CooldownRecord{{MovieID: 1, PublishedOn: today.AddDays(-20)}}, today, rules)

	scored, checked := ScoreAll(movies, today, cd, rules)
	if checked != 1 {
		t.Errorf("checked = %d, want 1", checked)
	}
	if len(scored) != 1 || scored[0].MovieID != 2 || scored[0].ScreeningID != 20 {
		t.Errorf("scored = %+v", scored)
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name        string
		candidates  []ScoredCandidate
		wantBest    uint64
		wantPublish bool
		wantScore   int
	}{
		{"empty", nil, 0, false, 0},
		{"below threshold", []ScoredCandidate{{MovieID: 1, Score: 59}}, 1, false, 59},
		{"at threshold", []ScoredCandidate{{MovieID: 1, Score: 60}}, 1, true, 60},
		{"first seen wins tie", []ScoredCandidate{{MovieID: 3, Score: 70}, {MovieID: 1, Score: 80}, {MovieID: 2, Score: 80}}, 1, true, 80},
		{"negative scores", []ScoredCandidate{{MovieID: 4, Score: -10}, {MovieID: 5, Score: -20}}, 4, false, -10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Select(tt.candidates, 60)
			if sel.Publish != tt.wantPublish {
				t.Errorf("publish = %v, want %v", sel.Publish, tt.wantPublish)
			}
			if sel.BestScore() != tt.wantScore {
				t.Errorf("best score = %d, want %d", sel.BestScore(), tt.wantScore)
			}
			if tt.wantBest == 0 {
				if sel.Best != nil {
					t.Errorf("best = %+v, want none", sel.Best)
				}
				return
			}
			if sel.Best == nil || sel.Best.MovieID != tt.wantBest {
				t.Errorf("best = %+v, want movie %d", sel.Best, tt.wantBest)
			}
		})
	}
}

func TestZoneClockUsesLocationDay(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	clock := ZoneClock{
		Location: loc,
		Now:      func() time.Time { return time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC) },
	}
	if got := clock.Today(); got.String() != "2024-03-10" {
		t.Errorf("Today() = %s, want 2024-03-10", got)
	}
}
