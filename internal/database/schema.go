package database

import (
	"context"
	"database/sql"
	"fmt"
)

// decisionsDDL creates the table that makes candidate selection idempotent.
// post_date is the uniqueness key: the first insert for a day wins and
// later inserts turn into a no-op update.  movies/screenings/cinemas are
// owned by the catalogue importer and are not created here.
const decisionsDDL = `CREATE TABLE IF NOT EXISTS spotlight_decisions (
	id                 INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	post_date          DATE         NOT NULL,
	movie_id           INT          NULL,
	screening_id       INT          NULL,
	score              INT          NOT NULL,
	published          BOOLEAN      NOT NULL,
	reason             VARCHAR(100) NOT NULL,
	candidates_checked INT          NOT NULL DEFAULT 0,
	created_at         TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uq_spotlight_decisions_post_date (post_date),
	KEY idx_spotlight_decisions_published (published, post_date)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the decisions table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, decisionsDDL); err != nil {
		return fmt.Errorf("create spotlight_decisions: %w", err)
	}
	return nil
}
