package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/classic-spotlight/internal/model"
)

var decisionCols = []string{"id", "post_date", "published", "movie_id", "screening_id", "score", "reason", "candidates_checked", "created_at"}

func TestDecisionUpsert(t *testing.T) {
	movieID, screeningID := uint64(7), uint64(100)
	published := model.Decision{
		Date: model.NewDate(2024, 3, 10), Published: true,
		MovieID: &movieID, ScreeningID: &screeningID,
		Score: 90, Reason: model.ReasonHighQuality, CandidatesChecked: 4,
	}
	skipped := model.Decision{
		Date: model.NewDate(2024, 3, 10), Score: 40,
		Reason: model.ReasonNoHighQuality, CandidatesChecked: 2,
	}

	tests := []struct {
		name         string
		decision     model.Decision
		args         []driver.Value
		affected     int64
		wantInserted bool
	}{
		{"fresh published", published, []driver.Value{"2024-03-10", uint64(7), uint64(100), 90, true, model.ReasonHighQuality, 4}, 1, true},
		{"fresh skipped", skipped, []driver.Value{"2024-03-10", nil, nil, 40, false, model.ReasonNoHighQuality, 2}, 1, true},
		{"duplicate day", published, []driver.Value{"2024-03-10", uint64(7), uint64(100), 90, true, model.ReasonHighQuality, 4}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE post_date = post_date")).
				WithArgs(tt.args...).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			inserted, err := NewDecisionRepo(db).Upsert(context.Background(), tt.decision)
			if err != nil {
				t.Fatalf("Upsert: %v", err)
			}
			if inserted != tt.wantInserted {
				t.Errorf("inserted = %v, want %v", inserted, tt.wantInserted)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestDecisionFindByDate(t *testing.T) {
	db, mock := newMock(t)
	day := model.NewDate(2024, 3, 10)
	created := time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM spotlight_decisions WHERE post_date").
		WithArgs("2024-03-10").
		WillReturnRows(sqlmock.NewRows(decisionCols).
			AddRow(int64(1), day.Time(), false, nil, nil, 55, model.ReasonNoHighQuality, 3, created))

	d, err := NewDecisionRepo(db).FindByDate(context.Background(), day)
	if err != nil {
		t.Fatalf("FindByDate: %v", err)
	}
	if !d.Date.Equal(day) || d.Published || d.MovieID != nil || d.Score != 55 || d.CandidatesChecked != 3 {
		t.Errorf("unexpected decision %+v", d)
	}
}

func TestDecisionFindByDateMiss(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM spotlight_decisions WHERE post_date").
		WillReturnRows(sqlmock.NewRows(decisionCols))

	_, err := NewDecisionRepo(db).FindByDate(context.Background(), model.NewDate(2024, 3, 10))
	if !errors.Is(err, ErrDecisionNotFound) {
		t.Fatalf("expected ErrDecisionNotFound, got %v", err)
	}
}

func TestDecisionPublishedBetween(t *testing.T) {
	db, mock := newMock(t)
	from, to := model.NewDate(2024, 2, 4), model.NewDate(2024, 3, 10)

	mock.ExpectQuery("WHERE published = TRUE").
		WithArgs("2024-02-04", "2024-03-10").
		WillReturnRows(sqlmock.NewRows([]string{"movie_id", "post_date"}).
			AddRow(int64(7), model.NewDate(2024, 2, 20).Time()).
			AddRow(int64(9), model.NewDate(2024, 3, 1).Time()))

	recs, err := NewDecisionRepo(db).PublishedBetween(context.Background(), from, to)
	if err != nil {
		t.Fatalf("PublishedBetween: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[1].MovieID != 9 || recs[1].PublishedOn.String() != "2024-03-01" {
		t.Errorf("unexpected record %+v", recs[1])
	}
}

func TestDecisionListBetween(t *testing.T) {
	db, mock := newMock(t)
	day := model.NewDate(2024, 3, 9)

	mock.ExpectQuery("WHERE post_date >= \\? AND post_date <= \\?").
		WithArgs("2024-03-01", "2024-03-10").
		WillReturnRows(sqlmock.NewRows(decisionCols).
			AddRow(int64(4), day.Time(), true, int64(7), int64(100), 80, model.ReasonHighQuality, 5, day.Time()))

	list, err := NewDecisionRepo(db).ListBetween(context.Background(), model.NewDate(2024, 3, 1), model.NewDate(2024, 3, 10))
	if err != nil {
		t.Fatalf("ListBetween: %v", err)
	}
	if len(list) != 1 || list[0].MovieID == nil || *list[0].MovieID != 7 {
		t.Fatalf("unexpected list %+v", list)
	}
}
