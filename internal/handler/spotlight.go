package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classic-spotlight/internal/logging"
	"github.com/iliyamo/classic-spotlight/internal/model"
	"github.com/iliyamo/classic-spotlight/internal/spotlight"
)

// MaxDecisionRange is the widest audit listing, in days.
const MaxDecisionRange = 90

// defaultDecisionRange is used when from is omitted.
const defaultDecisionRange = 30

var validate = validator.New(validator.WithRequiredStructEnabled())

// CandidateService is implemented by *spotlight.Service.
type CandidateService interface {
	GetCandidate(ctx context.Context, day *model.Date) (*spotlight.CandidateResult, error)
	Today() model.Date
}

// DecisionLister is implemented by *repository.DecisionRepo.
type DecisionLister interface {
	ListBetween(ctx context.Context, from, to model.Date) ([]model.Decision, error)
}

// SpotlightHandler serves the daily candidate and the decision audit log.
type SpotlightHandler struct {
	svc       CandidateService
	decisions DecisionLister
}

// NewSpotlightHandler wires the handler; both dependencies are required.
func NewSpotlightHandler(svc CandidateService, decisions DecisionLister) *SpotlightHandler {
	if svc == nil || decisions == nil {
		panic("handler.NewSpotlightHandler: nil dependency")
	}
	return &SpotlightHandler{svc: svc, decisions: decisions}
}

type candidateQuery struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

type decisionsQuery struct {
	From string `validate:"omitempty,datetime=2006-01-02"`
	To   string `validate:"omitempty,datetime=2006-01-02"`
}

// GetCandidate handles GET /v1/spotlight/candidate?date=YYYY-MM-DD.
// Without a date the current day in the service timezone is used.
func (h *SpotlightHandler) GetCandidate(c echo.Context) error {
	q := candidateQuery{Date: c.QueryParam("date")}
	if err := validate.Struct(q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be in YYYY-MM-DD format"})
	}
	var day *model.Date
	if q.Date != "" {
		d, err := model.ParseDate(q.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be in YYYY-MM-DD format"})
		}
		day = &d
	}

	ctx := c.Request().Context()
	res, err := h.svc.GetCandidate(ctx, day)
	if err != nil {
		if errors.Is(err, spotlight.ErrStaleDecision) {
			logging.Ctx(ctx).Warn().Err(err).Msg("stored decision no longer resolves")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "stale_decision"})
		}
		logging.Ctx(ctx).Error().Err(err).Msg("get candidate failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	return c.JSON(http.StatusOK, res)
}

// decisionView is the audit representation of a stored decision.
type decisionView struct {
	Date              model.Date `json:"date"`
	Publish           bool       `json:"publish"`
	MovieID           *uint64    `json:"movieId"`
	ScreeningID       *uint64    `json:"screeningId"`
	Score             int        `json:"score"`
	Reason            string     `json:"reason"`
	CandidatesChecked int        `json:"candidatesChecked"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// ListDecisions handles GET /v1/spotlight/decisions?from=&to=.  Both ends
// are inclusive; to defaults to today and from to 29 days earlier.  The
// range may span at most MaxDecisionRange days.
func (h *SpotlightHandler) ListDecisions(c echo.Context) error {
	q := decisionsQuery{From: c.QueryParam("from"), To: c.QueryParam("to")}
	if err := validate.Struct(q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from and to must be in YYYY-MM-DD format"})
	}

	to := h.svc.Today()
	if q.To != "" {
		to, _ = model.ParseDate(q.To)
	}
	from := to.AddDays(-(defaultDecisionRange - 1))
	if q.From != "" {
		from, _ = model.ParseDate(q.From)
	}
	if from.After(to) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must not be after to"})
	}
	if from.DaysUntil(to)+1 > MaxDecisionRange {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "range must not exceed 90 days"})
	}

	ctx := c.Request().Context()
	list, err := h.decisions.ListBetween(ctx, from, to)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("list decisions failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	out := make([]decisionView, 0, len(list))
	for _, d := range list {
		out = append(out, decisionView{
			Date:              d.Date,
			Publish:           d.Published,
			MovieID:           d.MovieID,
			ScreeningID:       d.ScreeningID,
			Score:             d.Score,
			Reason:            d.Reason,
			CandidatesChecked: d.CandidatesChecked,
			CreatedAt:         d.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"from": from, "to": to, "decisions": out})
}
