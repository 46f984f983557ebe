package middleware

import (
	"github.com/labstack/echo/v4"
)

// Allower decides whether a request for key may proceed.
type Allower interface {
	Allow(key string) bool
}

// RateLimit rejects requests when the per-client budget is exhausted.
// The key is the session header when present, otherwise the client IP.
func RateLimit(a Allower, onDeny echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(HeaderSessionID)
			if key == "" {
				key = c.RealIP()
			}
			if !a.Allow(key) {
				return onDeny(c)
			}
			return next(c)
		}
	}
}
