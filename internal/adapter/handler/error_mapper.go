package handler

import (
	"errors"
	"net/http"

	"mail-hub/internal/domain"
	"mail-hub/internal/infrastructure/validation"

	"github.com/labstack/echo/v4"
)

// mapDomainError converts a domain error into an appropriate echo.HTTPError.
func mapDomainError(err error) *echo.HTTPError {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": verr.Errors,
		})
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrAuthFailed),
		errors.Is(err, domain.ErrSessionExpired),
		errors.Is(err, domain.ErrSessionInactive),
		errors.Is(err, domain.ErrMissingIdentity),
		errors.Is(err, domain.ErrTokenInvalid):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")

	case errors.Is(err, domain.ErrMailboxMismatch),
		errors.Is(err, domain.ErrEmailForbidden),
		errors.Is(err, domain.ErrUntrustedOrigin):
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")

	case errors.Is(err, domain.ErrEmailNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "email not found")

	case errors.Is(err, domain.ErrRecipientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "recipient not registered")

	case errors.Is(err, domain.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid input")

	case errors.Is(err, domain.ErrKratosUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "identity provider unavailable")

	case errors.Is(err, domain.ErrMailProviderFailed):
		return echo.NewHTTPError(http.StatusBadGateway, "mail provider unavailable")

	case errors.Is(err, domain.ErrAnalyzerUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "email analyzer unavailable")

	case errors.Is(err, domain.ErrDatabaseUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")

	case errors.Is(err, domain.ErrTokenGeneration),
		errors.Is(err, domain.ErrTokenSecretWeak):
		return echo.NewHTTPError(http.StatusInternalServerError, "token generation error")

	case errors.Is(err, domain.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
