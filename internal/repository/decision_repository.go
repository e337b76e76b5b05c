package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/classic-spotlight/internal/model"
)

// DecisionRepo persists one selection decision per calendar day in
// spotlight_decisions.  Rows are append-only: the repository exposes no
// update or delete.
type DecisionRepo struct {
	db *sql.DB
}

// NewDecisionRepo returns a new DecisionRepo bound to the given database.
func NewDecisionRepo(db *sql.DB) *DecisionRepo { return &DecisionRepo{db: db} }

const decisionColumns = `id, post_date, published, movie_id, screening_id, score, reason, candidates_checked, created_at`

// FindByDate returns the decision stored for day, or ErrDecisionNotFound.
func (r *DecisionRepo) FindByDate(ctx context.Context, day model.Date) (*model.Decision, error) {
	q := `SELECT ` + decisionColumns + ` FROM spotlight_decisions WHERE post_date = ? LIMIT 1`
	d, err := scanDecision(r.db.QueryRowContext(ctx, q, dbDate(day)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDecisionNotFound
		}
		return nil, err
	}
	return d, nil
}

// Upsert writes d unless a row for d.Date already exists, in which case the
// statement degrades to a no-op update of post_date onto itself and the
// first writer's row is kept.  inserted reports whether this call created
// the row.  Concurrent callers for the same day never see an error from
// the unique key.
func (r *DecisionRepo) Upsert(ctx context.Context, d model.Decision) (inserted bool, err error) {
	const q = `INSERT INTO spotlight_decisions
                   (post_date, movie_id, screening_id, score, published, reason, candidates_checked)
               VALUES (?, ?, ?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE post_date = post_date`
	res, err := r.db.ExecContext(ctx, q,
		dbDate(d.Date), nullID(d.MovieID), nullID(d.ScreeningID),
		d.Score, d.Published, d.Reason, d.CandidatesChecked,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	// MySQL reports 1 for a fresh insert and 0 for an unchanged duplicate.
	return n == 1, nil
}

// PublishedBetween returns movies published on days in [from, to).  Skipped
// decisions and rows without a movie are excluded.
func (r *DecisionRepo) PublishedBetween(ctx context.Context, from, to model.Date) ([]model.CooldownRecord, error) {
	const q = `SELECT movie_id, post_date
               FROM spotlight_decisions
               WHERE published = TRUE AND movie_id IS NOT NULL
                 AND post_date >= ? AND post_date < ?
               ORDER BY post_date ASC`
	rows, err := r.db.QueryContext(ctx, q, dbDate(from), dbDate(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CooldownRecord
	for rows.Next() {
		var (
			rec      model.CooldownRecord
			postDate sql.NullTime
		)
		if err := rows.Scan(&rec.MovieID, &postDate); err != nil {
			return nil, err
		}
		rec.PublishedOn = dateFromDB(postDate.Time)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBetween returns all decisions for days in [from, to] ordered by day.
// It backs the audit listing.
func (r *DecisionRepo) ListBetween(ctx context.Context, from, to model.Date) ([]model.Decision, error) {
	q := `SELECT ` + decisionColumns + `
          FROM spotlight_decisions
          WHERE post_date >= ? AND post_date <= ?
          ORDER BY post_date ASC`
	rows, err := r.db.QueryContext(ctx, q, dbDate(from), dbDate(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Decision{}
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (*model.Decision, error) {
	var (
		d           model.Decision
		postDate    sql.NullTime
		movieID     sql.NullInt64
		screeningID sql.NullInt64
		createdAt   sql.NullTime
	)
	if err := row.Scan(&d.ID, &postDate, &d.Published, &movieID, &screeningID,
		&d.Score, &d.Reason, &d.CandidatesChecked, &createdAt); err != nil {
		return nil, err
	}
	d.Date = dateFromDB(postDate.Time)
	d.MovieID = idPtr(movieID)
	d.ScreeningID = idPtr(screeningID)
	d.CreatedAt = createdAt.Time
	return &d, nil
}

func idPtr(n sql.NullInt64) *uint64 {
	if !n.Valid || n.Int64 <= 0 {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}

func nullID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}
