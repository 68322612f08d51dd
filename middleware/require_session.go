package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"mail-hub/internal/domain"
)

// SessionResolver resolves a session cookie value to an identity.
type SessionResolver interface {
	Execute(ctx context.Context, token string) (*domain.Identity, error)
}

// RequireSessionConfig configures RequireSession.
type RequireSessionConfig struct {
	Sessions SessionResolver
	// Tokens verifies bearer mailbox tokens; nil disables bearer auth.
	Tokens         domain.TokenVerifier
	SessionCookies []string
	Logger         *slog.Logger
}

// RequireSession authenticates the request with a bearer mailbox token or a
// session cookie and stores the identity for handlers. Requests without a
// valid credential are rejected with 401.
func RequireSession(cfg RequireSessionConfig) echo.MiddlewareFunc {
	cookies := cfg.SessionCookies
	if len(cookies) == 0 {
		cookies = DefaultSessionCookies
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if bearer := bearerToken(req); bearer != "" && cfg.Tokens != nil {
				identity, err := cfg.Tokens.VerifyMailboxToken(bearer)
				if err != nil {
					logger.DebugContext(req.Context(), "bearer token rejected", "error", err)
					return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
				}
				SetIdentity(c, identity)
				return next(c)
			}

			token := SessionToken(req, cookies)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}

			identity, err := cfg.Sessions.Execute(req.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrKratosUnavailable) || errors.Is(err, domain.ErrDatabaseUnavailable) {
					logger.ErrorContext(req.Context(), "session backend unavailable", "error", err)
					return echo.NewHTTPError(http.StatusServiceUnavailable, "session service unavailable")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}
