package middleware

import (
	"context"
	"net/http"

	applogger "FinAdvise/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Allower is satisfied by every rate limiter backend.
type Allower interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit rejects callers over their budget with 429, keyed by client IP.
// A limiter error lets the request through.
func RateLimit(lim Allower, l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if lim == nil {
				return next(c)
			}
			key := c.RealIP()
			ok, err := lim.Allow(c.Request().Context(), key)
			if err != nil {
				l.Warn("rate limiter unavailable, allowing request",
					applogger.String("key", key),
					applogger.Error(err),
				)
				return next(c)
			}
			if !ok {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded")
			}
			return next(c)
		}
	}
}
