package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classic-spotlight/internal/config"
	"github.com/iliyamo/classic-spotlight/internal/handler"
	"github.com/iliyamo/classic-spotlight/internal/middleware"
	"github.com/iliyamo/classic-spotlight/internal/model"
	"github.com/iliyamo/classic-spotlight/internal/spotlight"
)

type stubService struct{}

func (s stubService) GetCandidate(_ context.Context, day *model.Date) (*spotlight.CandidateResult, error) {
	d := s.Today()
	if day != nil {
		d = *day
	}
	return &spotlight.CandidateResult{Date: d, Reason: model.ReasonNoHighQuality, Meta: &spotlight.SkipMeta{MinScore: 60}}, nil
}

func (stubService) Today() model.Date { return model.NewDate(2024, 3, 10) }

type stubLister struct{}

func (stubLister) ListBetween(context.Context, model.Date, model.Date) ([]model.Decision, error) {
	return nil, nil
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	e := echo.New()
	RegisterRoutes(e, handler.NewReadyHandler(db, nil))
	RegisterSpotlight(e, Deps{
		Spotlight: handler.NewSpotlightHandler(stubService{}, stubLister{}),
		Auth:      middleware.NewAuthenticator(middleware.AuthConfig{APIKey: "k"}),
		RateLimit: config.RateLimitConfig{
			Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour,
			TTL: time.Hour, KeyStrategy: "ip_route", Prefix: "t", BypassInternal: true,
		},
		Cache: config.CacheConfig{Enabled: true},
	})
	return e
}

func TestRoutes(t *testing.T) {
	e := newTestEcho(t)
	tests := []struct {
		target     string
		key        string
		wantStatus int
	}{
		{"/healthz", "", http.StatusOK},
		{"/metrics", "", http.StatusOK},
		{"/v1/spotlight/candidate?date=2024-03-10", "k", http.StatusOK},
		{"/v1/spotlight/candidate?date=2024-03-10", "k", http.StatusOK},
		{"/v1/spotlight/decisions", "k", http.StatusOK},
		{"/v1/spotlight/candidate", "", http.StatusUnauthorized},
		{"/v1/spotlight/candidate", "", http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.target, nil)
		if tt.key != "" {
			req.Header.Set(middleware.InternalKeyHeader, tt.key)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tt.wantStatus {
			t.Errorf("%s (key %q): status %d, want %d", tt.target, tt.key, rec.Code, tt.wantStatus)
		}
	}
}

func TestMetricsExposeSpotlightCollectors(t *testing.T) {
	e := newTestEcho(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "spotlight_publish_errors_total") {
		t.Error("metrics output missing spotlight collectors")
	}
}
