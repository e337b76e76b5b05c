package spotlight

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/iliyamo/classic-spotlight/internal/logging"
	"github.com/iliyamo/classic-spotlight/internal/metrics"
	"github.com/iliyamo/classic-spotlight/internal/model"
	"github.com/iliyamo/classic-spotlight/internal/repository"
)

// CatalogStore reads movies.  repository.MovieRepo implements it.
type CatalogStore interface {
	EligibleMovies(ctx context.Context, window model.Window, classicBefore int) ([]model.CandidateMovie, error)
	HeroByID(ctx context.Context, id uint64) (*model.MovieHero, error)
}

// ScreeningStore reads screenings.  repository.ScreeningRepo implements it.
type ScreeningStore interface {
	SummaryByID(ctx context.Context, id uint64) (*model.ScreeningSummary, error)
}

// DecisionStore persists decisions.  FindByDate must return
// repository.ErrDecisionNotFound on a miss and Upsert must keep an
// existing row for the same day.
type DecisionStore interface {
	FindByDate(ctx context.Context, day model.Date) (*model.Decision, error)
	Upsert(ctx context.Context, d model.Decision) (inserted bool, err error)
	PublishedBetween(ctx context.Context, from, to model.Date) ([]model.CooldownRecord, error)
}

// Notifier is told about each decision this process inserted.
type Notifier interface {
	NotifyDecision(ctx context.Context, d model.Decision) error
}

// Service resolves the spotlight candidate of a day.
type Service struct {
	catalog    CatalogStore
	screenings ScreeningStore
	decisions  DecisionStore
	clock      Clock
	rules      Rules
	notifier   Notifier

	notifyTimeout time.Duration
	pending       sync.WaitGroup

	flight singleflight.Group
}

// DefaultNotifyTimeout bounds one background notification.
const DefaultNotifyTimeout = 5 * time.Second

// Option customises a Service.
type Option func(*Service)

// WithRules replaces DefaultRules.
func WithRules(r Rules) Option { return func(s *Service) { s.rules = r } }

// WithNotifier registers a Notifier for inserted decisions.
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithNotifyTimeout replaces DefaultNotifyTimeout.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// NewService wires the engine.  All stores and the clock are required.
func NewService(catalog CatalogStore, screenings ScreeningStore, decisions DecisionStore, clock Clock, opts ...Option) *Service {
	if catalog == nil || screenings == nil || decisions == nil || clock == nil {
		panic("spotlight.NewService: nil dependency")
	}
	s := &Service{
		catalog:    catalog,
		screenings: screenings,
		decisions:  decisions,
		clock:      clock,
		rules:      DefaultRules(),

		notifyTimeout: DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the rule set in use.
func (s *Service) Rules() Rules { return s.rules }

// Today returns the current day according to the service clock.
func (s *Service) Today() model.Date { return s.clock.Today() }

// GetCandidate returns the decision for day, computing and storing it on
// first use.  A nil day means today.  Once a day is decided every later
// call returns the same result.  Calls for the same day in this process
// share one computation, which keeps running when the caller that started
// it goes away.
func (s *Service) GetCandidate(ctx context.Context, day *model.Date) (*CandidateResult, error) {
	d := s.clock.Today()
	if day != nil {
		d = *day
	}
	v, err, _ := s.flight.Do(d.String(), func() (any, error) {
		return s.resolve(context.WithoutCancel(ctx), d)
	})
	if err != nil {
		return nil, err
	}
	return v.(*CandidateResult), nil
}

func (s *Service) resolve(ctx context.Context, day model.Date) (*CandidateResult, error) {
	stored, err := s.decisions.FindByDate(ctx, day)
	switch {
	case err == nil:
		metrics.RecordDecision(stored.Published, metrics.SourceCache, stored.Score, stored.CandidatesChecked)
		return s.present(ctx, *stored)
	case !errors.Is(err, repository.ErrDecisionNotFound):
		return nil, err
	}
	return s.compute(ctx, day)
}

func (s *Service) compute(ctx context.Context, day model.Date) (*CandidateResult, error) {
	window := s.rules.Window(day)

	var (
		history []model.CooldownRecord
		movies  []model.CandidateMovie
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = s.decisions.PublishedBetween(gctx, s.rules.HistoryFrom(day), day)
		return err
	})
	g.Go(func() error {
		var err error
		movies, err = s.catalog.EligibleMovies(gctx, window, s.rules.ClassicYearThreshold)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cd := ComputeCooldown(history, day, s.rules)
	eligible := FilterEligible(movies, window, s.rules)
	scored, checked := ScoreAll(eligible, day, cd, s.rules)
	sel := Select(scored, s.rules.MinScore)

	dec := model.Decision{
		Date:              day,
		Published:         sel.Publish,
		Score:             sel.BestScore(),
		Reason:            model.ReasonNoHighQuality,
		CandidatesChecked: checked,
	}
	if sel.Publish {
		movieID, screeningID := sel.Best.MovieID, sel.Best.ScreeningID
		dec.MovieID = &movieID
		dec.ScreeningID = &screeningID
		dec.Reason = model.ReasonHighQuality
	}

	inserted, err := s.decisions.Upsert(ctx, dec)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("date", day.String()).
		Bool("published", dec.Published).
		Int("score", dec.Score).
		Int("candidates_checked", checked).
		Int("hard_cooldown", len(cd.Hard)).
		Int("soft_cooldown", len(cd.Soft)).
		Bool("inserted", inserted).
		Msg("spotlight decision computed")
	metrics.RecordDecision(dec.Published, metrics.SourceComputed, dec.Score, checked)

	if inserted && s.notifier != nil {
		s.notify(ctx, dec)
	}
	return s.present(ctx, dec)
}

// notify hands d to the notifier in the background, detached from the
// request and bounded by notifyTimeout.
func (s *Service) notify(ctx context.Context, d model.Decision) {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		if err := s.notifier.NotifyDecision(nctx, d); err != nil {
			logging.Ctx(nctx).Warn().Err(err).Str("date", d.Date.String()).Msg("decision notification failed")
		}
	}()
}

// Wait blocks until background notifications have finished.  Call it
// before exiting so inserted decisions are not left unannounced.
func (s *Service) Wait() { s.pending.Wait() }

// present turns a decision into a result, loading the movie and screening
// of a published one.
func (s *Service) present(ctx context.Context, d model.Decision) (*CandidateResult, error) {
	if !d.Published {
		return skippedResult(d, s.rules.MinScore), nil
	}
	if d.MovieID == nil || d.ScreeningID == nil {
		return nil, fmt.Errorf("%w: decision for %s has no movie or screening", ErrStaleDecision, d.Date)
	}
	movie, err := s.catalog.HeroByID(ctx, *d.MovieID)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, fmt.Errorf("%w: movie %d: %w", ErrStaleDecision, *d.MovieID, err)
		}
		return nil, err
	}
	screening, err := s.screenings.SummaryByID(ctx, *d.ScreeningID)
	if err != nil {
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return nil, fmt.Errorf("%w: screening %d: %w", ErrStaleDecision, *d.ScreeningID, err)
		}
		return nil, err
	}
	return publishedResult(d, movie, screening), nil
}
