package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// Content security policies for the two kinds of responses the edge serves.
const (
	APIContentSecurityPolicy  = "default-src 'none'; frame-ancestors 'none'"
	PageContentSecurityPolicy = "default-src 'self'; img-src 'self' data: https:; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'"
)

// SecurityHeaders adds security-related HTTP headers to all responses.
// JSON API responses get the locked-down policy and are never cached.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			if isAPIPath(c.Request().URL.Path) {
				h.Set("Content-Security-Policy", APIContentSecurityPolicy)
				h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
			} else {
				h.Set("Content-Security-Policy", PageContentSecurityPolicy)
			}
			return next(c)
		}
	}
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/s/")
}
