package handler

import (
	"net/http"

	"mail-hub/internal/usecase"
	"mail-hub/middleware"

	"github.com/labstack/echo/v4"
)

// ValidateHandler handles /validate for reverse-proxy auth_request checks.
type ValidateHandler struct {
	uc      *usecase.ValidateSession
	cookies []string
}

// NewValidateHandler creates a new validate handler.
func NewValidateHandler(uc *usecase.ValidateSession, cookies []string) *ValidateHandler {
	if len(cookies) == 0 {
		cookies = middleware.DefaultSessionCookies
	}
	return &ValidateHandler{uc: uc, cookies: cookies}
}

// Handle answers 200 with identity headers for a valid session cookie.
func (h *ValidateHandler) Handle(c echo.Context) error {
	token := middleware.SessionToken(c.Request(), h.cookies)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "session cookie not found")
	}

	identity, err := h.uc.Execute(c.Request().Context(), token)
	if err != nil {
		return mapDomainError(err)
	}

	c.Response().Header().Set("X-Mail-Hub-User-Id", identity.UserID)
	c.Response().Header().Set("X-Mail-Hub-User-Email", identity.Email)
	c.Response().Header().Set("X-Mail-Hub-Mailbox", identity.Mailbox())
	return c.NoContent(http.StatusOK)
}
