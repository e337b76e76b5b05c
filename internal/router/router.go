package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/classic-spotlight/internal/config"
	"github.com/iliyamo/classic-spotlight/internal/handler"
	"github.com/iliyamo/classic-spotlight/internal/middleware"
)

// RegisterRoutes registers the unauthenticated operational endpoints:
// liveness, readiness and Prometheus metrics.
func RegisterRoutes(e *echo.Echo, ready *handler.ReadyHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", ready.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Deps bundles what the spotlight routes need.
type Deps struct {
	Spotlight *handler.SpotlightHandler
	Auth      *middleware.Authenticator
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client // nil disables the response cache
}

// RegisterSpotlight registers the internal /v1/spotlight endpoints.  The
// caller is identified cheaply first, the rate limiter then lets known
// internal callers through unthrottled, then the caller must
// authenticate, then dated responses are cached.
func RegisterSpotlight(e *echo.Echo, d Deps) {
	var bypass func(echo.Context) bool
	if d.RateLimit.BypassInternal {
		bypass = d.Auth.Valid
	}

	g := e.Group("/v1/spotlight")
	g.Use(d.Auth.Identify())
	g.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis, bypass))
	g.Use(d.Auth.Middleware())
	g.Use(middleware.NewRedisCache(d.Cache, d.Redis))

	g.GET("/candidate", d.Spotlight.GetCandidate)
	g.GET("/decisions", d.Spotlight.ListDecisions)
}
