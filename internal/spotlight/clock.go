package spotlight

import (
	"time"

	"github.com/iliyamo/classic-spotlight/internal/model"
)

// Clock supplies the current calendar day.
type Clock interface {
	Today() model.Date
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() model.Date

func (f ClockFunc) Today() model.Date { return f() }

// FixedClock always reports day.
func FixedClock(day model.Date) Clock {
	return ClockFunc(func() model.Date { return day })
}

// ZoneClock reports the calendar day of the current instant in Location.
type ZoneClock struct {
	Location *time.Location
	Now      func() time.Time // defaults to time.Now
}

// NewZoneClock returns a ZoneClock for loc.
func NewZoneClock(loc *time.Location) ZoneClock {
	if loc == nil {
		loc = time.UTC
	}
	return ZoneClock{Location: loc, Now: time.Now}
}

func (c ZoneClock) Today() model.Date {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return model.DateOf(now().In(loc))
}
