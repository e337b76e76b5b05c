// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers to distinguish
// "row does not exist" from infrastructure failures.  A missing decision
// is the normal cache-miss path; a missing movie or screening behind a
// stored decision means the catalogue changed after the decision was made.
package repository

import "errors"

// ErrDecisionNotFound is returned when no decision exists for a date.
var ErrDecisionNotFound = errors.New("decision not found")

// ErrMovieNotFound is returned when a movie id does not resolve.
var ErrMovieNotFound = errors.New("movie not found")

// ErrScreeningNotFound is returned when a screening id does not resolve.
var ErrScreeningNotFound = errors.New("screening not found")
