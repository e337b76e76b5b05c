// Package app assembles the spotlight engine from configuration.  Both the
// HTTP server and the CLI build their engine here.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/classic-spotlight/internal/config"
	"github.com/iliyamo/classic-spotlight/internal/database"
	"github.com/iliyamo/classic-spotlight/internal/logging"
	"github.com/iliyamo/classic-spotlight/internal/repository"
	"github.com/iliyamo/classic-spotlight/internal/service"
	"github.com/iliyamo/classic-spotlight/internal/spotlight"
)

// InitLogging applies the logging settings from cfg.
func InitLogging(cfg config.Config) {
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// OpenDatabase connects to MySQL and makes sure the decisions table exists.
func OpenDatabase(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	db, err := database.Open(database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

// Engine is the wired selection service plus the decision repository that
// backs the audit listing.
type Engine struct {
	Service   *spotlight.Service
	Decisions *repository.DecisionRepo
}

// NewEngine wires repositories, clock and (when enabled) the event
// publisher into a spotlight.Service.
func NewEngine(cfg config.Config, db *sql.DB) Engine {
	decisions := repository.NewDecisionRepo(db)
	opts := []spotlight.Option{}
	if cfg.PublishEvents {
		opts = append(opts, spotlight.WithNotifier(service.NewDecisionPublisher(cfg.AMQPURL, service.DefaultBreakerConfig())))
	}
	svc := spotlight.NewService(
		repository.NewMovieRepo(db),
		repository.NewScreeningRepo(db),
		decisions,
		spotlight.NewZoneClock(cfg.Location()),
		opts...,
	)
	return Engine{Service: svc, Decisions: decisions}
}
