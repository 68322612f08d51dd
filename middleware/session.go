package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"mail-hub/internal/domain"
	"mail-hub/utils/logger"
)

// DefaultSessionCookies are the cookies the sign-in service sets; the
// __Secure- variant is used on HTTPS deployments.
var DefaultSessionCookies = []string{
	"better-auth.session_token",
	"__Secure-better-auth.session_token",
}

const identityKey = "mailhub.identity"

// SessionToken returns the value of the first non-empty session cookie.
func SessionToken(r *http.Request, names []string) string {
	for _, name := range names {
		if ck, err := r.Cookie(name); err == nil && ck.Value != "" {
			return ck.Value
		}
	}
	return ""
}

// bearerToken extracts the credential of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// SetIdentity stores the authenticated identity on the echo context and tags
// the request context with its user and mailbox for logging.
func SetIdentity(c echo.Context, identity *domain.Identity) {
	c.Set(identityKey, identity)

	req := c.Request()
	ctx := logger.WithUserID(req.Context(), identity.UserID)
	ctx = logger.WithMailbox(ctx, identity.Mailbox())
	c.SetRequest(req.WithContext(ctx))
}

// IdentityFrom returns the identity stored by RequireSession.
func IdentityFrom(c echo.Context) (*domain.Identity, bool) {
	identity, ok := c.Get(identityKey).(*domain.Identity)
	return identity, ok && identity != nil
}
