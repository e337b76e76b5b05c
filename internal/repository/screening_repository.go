package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/classic-spotlight/internal/model"
)

// ScreeningRepo reads single screenings with their cinema and city.
type ScreeningRepo struct {
	db *sql.DB
}

// NewScreeningRepo constructs a ScreeningRepo with the given DB handle.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo {
	return &ScreeningRepo{db: db}
}

// SummaryByID loads a screening for presentation.  Cinema and city are
// LEFT JOINed; when they are missing the summary carries zero values, as
// the public listing endpoints do.  It returns ErrScreeningNotFound if the
// screening itself does not exist.
func (r *ScreeningRepo) SummaryByID(ctx context.Context, id uint64) (*model.ScreeningSummary, error) {
	const q = `SELECT s.id, s.date, s.url, s.is_dubbing, s.is_subtitled,
                      c.id, c.name, c.street,
                      ci.id, ci.name, ci.name_declinated
               FROM screenings s
               LEFT JOIN cinemas c ON c.filmweb_id = s.cinema_id
               LEFT JOIN cities ci ON ci.filmweb_id = c.filmweb_city_id
               WHERE s.id = ?`
	var (
		screeningID        uint64
		startsAt           time.Time
		ticketURL          sql.NullString
		dubbed, subtitled  bool
		cinemaID           sql.NullInt64
		cinemaName, street sql.NullString
		cityID             sql.NullInt64
		cityName, cityDecl sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&screeningID, &startsAt, &ticketURL, &dubbed, &subtitled,
		&cinemaID, &cinemaName, &street,
		&cityID, &cityName, &cityDecl,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScreeningNotFound
		}
		return nil, err
	}

	cinema := model.CinemaSummary{
		Name:   cinemaName.String,
		Street: nonEmpty(street),
		City: model.City{
			Name:           cityName.String,
			NameDeclinated: cityDecl.String,
		},
	}
	if cinemaID.Valid {
		cinema.ID = uint64(cinemaID.Int64)
	}
	if cityID.Valid {
		cinema.City.ID = uint64(cityID.Int64)
	}
	s := model.NewScreeningSummary(screeningID, startsAt, nonEmpty(ticketURL), dubbed, subtitled, cinema)
	return &s, nil
}
