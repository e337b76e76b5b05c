// Package repository contains data access logic separated from HTTP handlers
// and from the selection engine.  This file reads the movie catalogue: the
// joined candidate view used for scoring and the hero summary used in
// responses.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/classic-spotlight/internal/model"
)

// MovieRepo reads movies, their genres and their upcoming screenings.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// EligibleMovies returns movies produced before classicBefore that have a
// backdrop image, each with its screenings inside window (both ends
// inclusive, by calendar day) that have a ticket url.  Movies come ordered
// by id and screenings by time then id, so repeated calls over unchanged
// data yield the same order.
func (r *MovieRepo) EligibleMovies(ctx context.Context, window model.Window, classicBefore int) ([]model.CandidateMovie, error) {
	// The upper bound is exclusive midnight of the day after window.To.
	const q = `SELECT m.id, m.production_year, s.id, s.date, s.is_subtitled, s.is_dubbing, COALESCE(ci.id, 0)
               FROM movies m
               JOIN screenings s ON s.movie_id = m.id
               LEFT JOIN cinemas c ON c.filmweb_id = s.cinema_id
               LEFT JOIN cities ci ON ci.filmweb_id = c.filmweb_city_id
               WHERE m.production_year < ?
                 AND m.backdrop_url IS NOT NULL AND m.backdrop_url <> ''
                 AND s.date >= ? AND s.date < ?
                 AND s.url IS NOT NULL AND s.url <> ''
               ORDER BY m.id ASC, s.date ASC, s.id ASC`
	rows, err := r.db.QueryContext(ctx, q, classicBefore, window.From.Time(), window.To.AddDays(1).Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []model.CandidateMovie
	index := map[uint64]int{}
	for rows.Next() {
		var (
			movieID uint64
			year    int
			s       model.CandidateScreening
		)
		if err := rows.Scan(&movieID, &year, &s.ID, &s.StartsAt, &s.Subtitled, &s.Dubbed, &s.CityID); err != nil {
			return nil, err
		}
		s.MovieID = movieID
		i, ok := index[movieID]
		if !ok {
			i = len(movies)
			index[movieID] = i
			movies = append(movies, model.CandidateMovie{ID: movieID, ProductionYear: year, HasImage: true})
		}
		movies[i].Screenings = append(movies[i].Screenings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return movies, nil
	}

	genres, err := r.genreIDs(ctx, movies)
	if err != nil {
		return nil, err
	}
	for i := range movies {
		movies[i].GenreIDs = genres[movies[i].ID]
	}
	return movies, nil
}

// genreIDs loads genre ids for all given movies in one query.
func (r *MovieRepo) genreIDs(ctx context.Context, movies []model.CandidateMovie) (map[uint64][]uint64, error) {
	placeholders := make([]string, len(movies))
	args := make([]any, len(movies))
	for i, m := range movies {
		placeholders[i] = "?"
		args[i] = m.ID
	}
	q := `SELECT movie_id, genre_id FROM movies_genres
          WHERE movie_id IN (` + strings.Join(placeholders, ",") + `)
          ORDER BY movie_id, genre_id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64][]uint64, len(movies))
	for rows.Next() {
		var movieID, genreID uint64
		if err := rows.Scan(&movieID, &genreID); err != nil {
			return nil, err
		}
		out[movieID] = append(out[movieID], genreID)
	}
	return out, rows.Err()
}

// HeroByID loads the presentation summary of a movie.  It returns
// ErrMovieNotFound if there is no matching row.
func (r *MovieRepo) HeroByID(ctx context.Context, id uint64) (*model.MovieHero, error) {
	const q = `SELECT id, title, title_original, description, production_year, duration, poster_url, backdrop_url
               FROM movies WHERE id = ?`
	var (
		m             model.MovieHero
		titleOriginal sql.NullString
		description   sql.NullString
		duration      sql.NullInt64
		poster        sql.NullString
		backdrop      sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.Title, &titleOriginal, &description, &m.ProductionYear, &duration, &poster, &backdrop,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	// Empty strings and non-positive durations are placeholders from the
	// importer and are exposed as null.
	m.TitleOriginal = nonEmpty(titleOriginal)
	m.Description = nonEmpty(description)
	m.PosterURL = nonEmpty(poster)
	m.BackdropURL = nonEmpty(backdrop)
	if duration.Valid && duration.Int64 > 0 {
		d := int(duration.Int64)
		m.Duration = &d
	}

	const gq = `SELECT g.id, g.name
                FROM movies_genres mg
                JOIN genres g ON g.id = mg.genre_id
                WHERE mg.movie_id = ?
                ORDER BY g.id`
	rows, err := r.db.QueryContext(ctx, gq, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m.Genres = []model.Genre{}
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		m.Genres = append(m.Genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &m, nil
}

func nonEmpty(s sql.NullString) *string {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return nil
	}
	v := s.String
	return &v
}

// dbDate formats a day for DATE column comparisons.
func dbDate(d model.Date) string { return d.String() }

// dateFromDB converts a scanned DATE column to a model.Date.
func dateFromDB(t time.Time) model.Date { return model.DateOf(t) }
