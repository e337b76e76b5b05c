package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/classic-spotlight/internal/app"
	"github.com/iliyamo/classic-spotlight/internal/config"
	"github.com/iliyamo/classic-spotlight/internal/handler"
	"github.com/iliyamo/classic-spotlight/internal/logging"
	"github.com/iliyamo/classic-spotlight/internal/middleware"
	"github.com/iliyamo/classic-spotlight/internal/router"
)

func main() {
	cfg := config.Load()
	app.InitLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("database unavailable")
	}
	defer db.Close()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		logging.Warn().Msg("redis unavailable; cache disabled, rate limiting is per instance")
	} else {
		defer rdb.Close()
	}

	engine := app.NewEngine(cfg, db)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestContext())

	router.RegisterRoutes(e, handler.NewReadyHandler(db, rdb))
	router.RegisterSpotlight(e, router.Deps{
		Spotlight: handler.NewSpotlightHandler(engine.Service, engine.Decisions),
		Auth: middleware.NewAuthenticator(middleware.AuthConfig{
			APIKey:       cfg.InternalAPIKey,
			APIKeyBcrypt: cfg.InternalAPIKeyBcrypt,
			JWTSecret:    cfg.JWTSecret,
		}),
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Redis:     rdb,
	})

	addr := ":" + cfg.Port
	go func() {
		logging.Info().Str("addr", addr).Str("env", cfg.Env).Str("timezone", cfg.Timezone).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("shutdown")
	}
	engine.Service.Wait()
}
