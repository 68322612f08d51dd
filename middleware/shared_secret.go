package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// WebhookSecretHeader carries the shared secret on inbound webhooks.
const WebhookSecretHeader = "X-Webhook-Secret"

// SharedSecret protects server-to-server endpoints with a shared secret
// sent in header or, for providers that cannot set headers, in the
// "secret" query parameter. An empty secret disables the check.
func SharedSecret(header, secret string) echo.MiddlewareFunc {
	secretBytes := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(secretBytes) == 0 {
				return next(c)
			}
			provided := c.Request().Header.Get(header)
			if provided == "" {
				provided = c.QueryParam("secret")
			}
			if provided == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing webhook secret")
			}
			if subtle.ConstantTimeCompare([]byte(provided), secretBytes) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid webhook secret")
			}
			return next(c)
		}
	}
}
