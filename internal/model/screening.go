package model

import "time"

// CandidateScreening is the scoring view of one screening.  It belongs to
// exactly one movie.  StartsAt holds the local wall-clock time as stored in
// screenings.date.
type CandidateScreening struct {
	ID        uint64    // screenings.id
	MovieID   uint64    // screenings.movie_id
	StartsAt  time.Time // screenings.date
	Subtitled bool      // screenings.is_subtitled
	Dubbed    bool      // screenings.is_dubbing
	CityID    uint64    // cities.id through the cinema; 0 when unknown
}

// ScreeningSummary is the screening shown in a published candidate.
type ScreeningSummary struct {
	ID          uint64        `json:"id"`
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	DateTime    string        `json:"dateTime"`
	TicketURL   *string       `json:"ticketUrl"`
	IsDubbing   bool          `json:"isDubbing"`
	IsSubtitled bool          `json:"isSubtitled"`
	Cinema      CinemaSummary `json:"cinema"`
}

// NewScreeningSummary fills the date/time strings from the stored
// wall-clock value.
func NewScreeningSummary(id uint64, startsAt time.Time, ticketURL *string, dubbed, subtitled bool, cinema CinemaSummary) ScreeningSummary {
	return ScreeningSummary{
		ID:          id,
		Date:        startsAt.Format("2006-01-02"),
		Time:        startsAt.Format("15:04"),
		DateTime:    startsAt.Format("2006-01-02T15:04:05") + "Z",
		TicketURL:   ticketURL,
		IsDubbing:   dubbed,
		IsSubtitled: subtitled,
		Cinema:      cinema,
	}
}
