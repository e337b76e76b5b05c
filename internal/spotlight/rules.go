// Package spotlight selects, once per calendar day, the classic-movie
// screening worth featuring.  The pure stages (filter, cooldown, score,
// select) are plain functions over model types; Service ties them to the
// stores and persists one Decision per day.
package spotlight

import "github.com/iliyamo/classic-spotlight/internal/model"

// Weights are the score contributions of each rule.  SoftCooldown is
// subtracted.
type Weights struct {
	Nearby       int // screening 1..NearbyMaxDays days out
	Upcoming     int // screening later in the window
	DeepClassic  int // produced before DeepClassicThreshold
	Classic      int // produced before ClassicYearThreshold
	MultiCity    int // eligible screenings in at least two cities
	MultiGenre   int // at least two genres
	Subtitled    int // subtitled screening
	SoftCooldown int // published in the soft cooldown band
}

// Rules holds every tunable of the selection.
type Rules struct {
	ClassicYearThreshold int
	DeepClassicThreshold int

	WindowMinDays int
	WindowMaxDays int
	NearbyMaxDays int

	HardCooldownDays      int
	SoftCooldownStartDays int
	SoftCooldownEndDays   int

	MinScore int
	Weights  Weights
}

// DefaultRules returns the production rule set.
func DefaultRules() Rules {
	return Rules{
		ClassicYearThreshold:  2000,
		DeepClassicThreshold:  1980,
		WindowMinDays:         1,
		WindowMaxDays:         7,
		NearbyMaxDays:         3,
		HardCooldownDays:      21,
		SoftCooldownStartDays: 22,
		SoftCooldownEndDays:   35,
		MinScore:              60,
		Weights: Weights{
			Nearby:       40,
			Upcoming:     20,
			DeepClassic:  20,
			Classic:      10,
			MultiCity:    20,
			MultiGenre:   10,
			Subtitled:    10,
			SoftCooldown: 30,
		},
	}
}

// Window returns the screening days considered for today.
func (r Rules) Window(today model.Date) model.Window {
	return model.Window{
		From: today.AddDays(r.WindowMinDays),
		To:   today.AddDays(r.WindowMaxDays),
	}
}

// HistoryFrom is the first day of publication history that can affect today.
func (r Rules) HistoryFrom(today model.Date) model.Date {
	return today.AddDays(-r.SoftCooldownEndDays)
}
