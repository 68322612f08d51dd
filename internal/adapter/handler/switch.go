package handler

import (
	"net/http"
	"regexp"
	"strings"

	"mail-hub/internal/domain"
	"mail-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

var mailboxLabel = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// SwitchHandler sends the browser to another signed-in mailbox.
type SwitchHandler struct {
	rootDomain string
}

// NewSwitchHandler creates a new switch handler.
func NewSwitchHandler(rootDomain string) *SwitchHandler {
	return &SwitchHandler{rootDomain: rootDomain}
}

// Handle processes GET /switch?to=<email>.
func (h *SwitchHandler) Handle(c echo.Context) error {
	to := strings.TrimSpace(c.QueryParam("to"))
	if !strings.Contains(to, "@") || !mailboxLabel.MatchString(domain.MailboxOf(to)) {
		return echo.NewHTTPError(http.StatusBadRequest, "to must be an email address")
	}
	return c.Redirect(http.StatusSeeOther, usecase.MailboxURL(to, h.rootDomain))
}
