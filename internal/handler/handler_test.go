package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classic-spotlight/internal/model"
	"github.com/iliyamo/classic-spotlight/internal/repository"
	"github.com/iliyamo/classic-spotlight/internal/spotlight"
)

var today = model.NewDate(2024, 3, 10)

type fakeService struct {
	gotDay *model.Date
	res    *spotlight.CandidateResult
	err    error
}

func (f *fakeService) GetCandidate(_ context.Context, day *model.Date) (*spotlight.CandidateResult, error) {
	f.gotDay = day
	return f.res, f.err
}

func (f *fakeService) Today() model.Date { return today }

type fakeLister struct {
	from, to model.Date
	list     []model.Decision
	err      error
}

func (f *fakeLister) ListBetween(_ context.Context, from, to model.Date) ([]model.Decision, error) {
	f.from, f.to = from, to
	return f.list, f.err
}

func do(h echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec)
	_ = h(c)
	return rec
}

func TestGetCandidate(t *testing.T) {
	skipped := &spotlight.CandidateResult{
		Date:   today,
		Reason: model.ReasonNoHighQuality,
		Meta:   &spotlight.SkipMeta{MinScore: 60},
	}
	tests := []struct {
		name       string
		target     string
		err        error
		wantStatus int
		wantBody   string
		wantDay    string
	}{
		{"today", "/v1/spotlight/candidate", nil, http.StatusOK, `"bestScore":null`, ""},
		{"explicit date", "/v1/spotlight/candidate?date=2024-03-10", nil, http.StatusOK, `"publish":false`, "2024-03-10"},
		{"bad format", "/v1/spotlight/candidate?date=10-03-2024", nil, http.StatusBadRequest, "YYYY-MM-DD", ""},
		{"impossible day", "/v1/spotlight/candidate?date=2024-02-30", nil, http.StatusBadRequest, "YYYY-MM-DD", ""},
		{"stale", "/v1/spotlight/candidate", fmt.Errorf("%w: %w", spotlight.ErrStaleDecision, repository.ErrMovieNotFound), http.StatusNotFound, "stale_decision", ""},
		{"db error", "/v1/spotlight/candidate", errors.New("connection refused"), http.StatusInternalServerError, "database_error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{res: skipped, err: tt.err}
			if tt.err != nil {
				svc.res = nil
			}
			h := NewSpotlightHandler(svc, &fakeLister{})
			rec := do(h.GetCandidate, tt.target)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body %s missing %s", rec.Body.String(), tt.wantBody)
			}
			if tt.wantDay != "" && (svc.gotDay == nil || svc.gotDay.String() != tt.wantDay) {
				t.Errorf("service got day %v, want %s", svc.gotDay, tt.wantDay)
			}
			if tt.wantDay == "" && tt.wantStatus == http.StatusOK && svc.gotDay != nil {
				t.Errorf("service got day %v, want nil", svc.gotDay)
			}
		})
	}
}

func TestGetCandidatePublishedShape(t *testing.T) {
	score := 90
	svc := &fakeService{res: &spotlight.CandidateResult{
		Publish: true, Date: today, Score: &score, Reason: model.ReasonHighQuality,
		Movie:     &model.MovieHero{ID: 1, Title: "Vertigo", ProductionYear: 1958, Genres: []model.Genre{}},
		Screening: &model.ScreeningSummary{ID: 10, Date: "2024-03-12", Time: "19:00"},
	}}
	rec := do(NewSpotlightHandler(svc, &fakeLister{}).GetCandidate, "/v1/spotlight/candidate")

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"publish", "date", "score", "reason", "movie", "screening"} {
		if _, ok := body[key]; !ok {
			t.Errorf("missing key %q in %s", key, rec.Body.String())
		}
	}
	if _, ok := body["meta"]; ok {
		t.Error("published result carries meta")
	}
	if body["date"] != "2024-03-10" {
		t.Errorf("date = %v", body["date"])
	}
}

func TestListDecisions(t *testing.T) {
	movieID := uint64(7)
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantFrom   string
		wantTo     string
	}{
		{"defaults", "/v1/spotlight/decisions", http.StatusOK, "2024-02-10", "2024-03-10"},
		{"explicit", "/v1/spotlight/decisions?from=2024-03-01&to=2024-03-05", http.StatusOK, "2024-03-01", "2024-03-05"},
		{"ninety days", "/v1/spotlight/decisions?from=2024-01-01&to=2024-03-30", http.StatusOK, "2024-01-01", "2024-03-30"},
		{"too wide", "/v1/spotlight/decisions?from=2024-01-01&to=2024-03-31", http.StatusBadRequest, "", ""},
		{"reversed", "/v1/spotlight/decisions?from=2024-03-05&to=2024-03-01", http.StatusBadRequest, "", ""},
		{"bad date", "/v1/spotlight/decisions?from=yesterday", http.StatusBadRequest, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeLister{list: []model.Decision{{Date: today, Published: true, MovieID: &movieID, Score: 80, Reason: model.ReasonHighQuality}}}
			rec := do(NewSpotlightHandler(&fakeService{}, lister).ListDecisions, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if lister.from.String() != tt.wantFrom || lister.to.String() != tt.wantTo {
				t.Errorf("range = %s..%s, want %s..%s", lister.from, lister.to, tt.wantFrom, tt.wantTo)
			}
			if !strings.Contains(rec.Body.String(), `"movieId":7`) {
				t.Errorf("body %s", rec.Body.String())
			}
		})
	}
}

func TestListDecisionsError(t *testing.T) {
	rec := do(NewSpotlightHandler(&fakeService{}, &fakeLister{err: errors.New("boom")}).ListDecisions, "/v1/spotlight/decisions")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	rec := do(Health, "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantDB     string
	}{
		{"up", nil, http.StatusOK, "ok"},
		{"down", errors.New("dial tcp: refused"), http.StatusServiceUnavailable, "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			if err != nil {
				t.Fatal(err)
			}
			defer db.Close()
			mock.ExpectPing().WillReturnError(tt.pingErr)

			rec := do(NewReadyHandler(db, nil).Ready, "/readyz")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["database"] != tt.wantDB || body["redis"] != "disabled" {
				t.Errorf("body = %v", body)
			}
		})
	}
}
