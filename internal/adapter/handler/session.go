package handler

import (
	"net/http"

	"mail-hub/internal/usecase"
	"mail-hub/middleware"

	"github.com/labstack/echo/v4"
)

// SessionHandler handles GET /api/session for the dashboard.
type SessionHandler struct {
	uc      *usecase.GetSession
	cookies []string
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(uc *usecase.GetSession, cookies []string) *SessionHandler {
	if len(cookies) == 0 {
		cookies = middleware.DefaultSessionCookies
	}
	return &SessionHandler{uc: uc, cookies: cookies}
}

// sessionUser represents the user object in the response.
type sessionUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
	Mailbox    string `json:"mailbox"`
	MailboxURL string `json:"mailboxUrl"`
}

// sessionInfo represents the session object in the response.
type sessionInfo struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

// sessionResponse represents the JSON response structure.
type sessionResponse struct {
	OK      bool        `json:"ok"`
	User    sessionUser `json:"user"`
	Session sessionInfo `json:"session"`
	Token   string      `json:"token"`
}

// Handle resolves the session cookie and returns the identity together with
// a mailbox token for cross-subdomain API calls.
func (h *SessionHandler) Handle(c echo.Context) error {
	token := middleware.SessionToken(c.Request(), h.cookies)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "session cookie not found")
	}

	result, err := h.uc.Execute(c.Request().Context(), token)
	if err != nil {
		return mapDomainError(err)
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, sessionResponse{
		OK: true,
		User: sessionUser{
			ID:         result.UserID,
			Email:      result.Email,
			Name:       result.Name,
			Image:      result.Image,
			Mailbox:    result.Mailbox,
			MailboxURL: result.MailboxURL,
		},
		Session: sessionInfo{
			ID:     sessionPrefix(result.SessionID),
			Active: true,
		},
		Token: result.MailboxToken,
	})
}

// sessionPrefix keeps only the first 8 characters of a session token.
func sessionPrefix(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
