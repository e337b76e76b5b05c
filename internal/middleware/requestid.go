package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classic-spotlight/internal/logging"
)

// RequestContext propagates X-Request-ID (generating one when absent) into
// the request context and the response, and writes one access log line per
// request.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = logging.NewRequestID()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			ctx := logging.ContextWithRequestID(req.Context(), id)
			c.SetRequest(req.WithContext(ctx))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logging.Ctx(ctx).Info().
				Str("method", req.Method).
				Str("path", c.Path()).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
