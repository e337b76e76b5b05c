package spotlight

import "github.com/iliyamo/classic-spotlight/internal/model"

// Cooldown holds the movies recently published relative to a day.  Hard
// and Soft are disjoint.
type Cooldown struct {
	Hard map[uint64]struct{}
	Soft map[uint64]struct{}
}

// IsHard reports whether the movie must not be considered at all.
func (c Cooldown) IsHard(movieID uint64) bool {
	_, ok := c.Hard[movieID]
	return ok
}

// IsSoft reports whether the movie is eligible but penalised.
func (c Cooldown) IsSoft(movieID uint64) bool {
	_, ok := c.Soft[movieID]
	return ok
}

// ComputeCooldown classifies published history against today.  A record
// published d days before today is hard when 1 <= d <= HardCooldownDays and
// soft when SoftCooldownStartDays <= d <= SoftCooldownEndDays.  A movie
// published in both bands is hard only.
func ComputeCooldown(history []model.CooldownRecord, today model.Date, rules Rules) Cooldown {
	cd := Cooldown{Hard: map[uint64]struct{}{}, Soft: map[uint64]struct{}{}}
	for _, rec := range history {
		if rec.MovieID == 0 {
			continue
		}
		ago := rec.PublishedOn.DaysUntil(today)
		switch {
		case ago >= 1 && ago <= rules.HardCooldownDays:
			cd.Hard[rec.MovieID] = struct{}{}
		case ago >= rules.SoftCooldownStartDays && ago <= rules.SoftCooldownEndDays:
			cd.Soft[rec.MovieID] = struct{}{}
		}
	}
	for id := range cd.Hard {
		delete(cd.Soft, id)
	}
	return cd
}
