package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Health is a simple liveness endpoint used by load balancers and
// monitoring systems.  It returns a plain text "ok" with HTTP 200.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ReadyHandler reports whether the dependencies needed to serve requests
// are reachable.  MySQL is required; Redis only backs the cache and rate
// limiter, so losing it degrades the service without making it unready.
type ReadyHandler struct {
	db      Pinger
	rdb     *redis.Client
	timeout time.Duration
}

// NewReadyHandler builds a ReadyHandler.  rdb may be nil when Redis is not
// configured.
func NewReadyHandler(db Pinger, rdb *redis.Client) *ReadyHandler {
	if db == nil {
		panic("handler.NewReadyHandler: nil db")
	}
	return &ReadyHandler{db: db, rdb: rdb, timeout: 2 * time.Second}
}

// Ready handles GET /readyz.
func (h *ReadyHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	database := "ok"
	if err := h.db.PingContext(ctx); err != nil {
		database, status, code = "down", "unavailable", http.StatusServiceUnavailable
	}
	cache := "disabled"
	if h.rdb != nil {
		cache = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			cache = "degraded"
		}
	}
	return c.JSON(code, echo.Map{"status": status, "database": database, "redis": cache})
}
