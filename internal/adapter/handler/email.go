package handler

import (
	"net/http"

	"mail-hub/internal/domain"
	"mail-hub/internal/usecase"
	"mail-hub/utils/logger"

	"github.com/labstack/echo/v4"
)

// EmailHandler serves the mailbox folders and single messages.
type EmailHandler struct {
	list   *usecase.ListEmails
	get    *usecase.GetEmail
	search *usecase.SearchEmails
}

// NewEmailHandler creates a new email handler.
func NewEmailHandler(list *usecase.ListEmails, get *usecase.GetEmail, search *usecase.SearchEmails) *EmailHandler {
	return &EmailHandler{list: list, get: get, search: search}
}

// folderResponse is the payload of a rewritten mailbox view.
type folderResponse struct {
	Mailbox string                `json:"mailbox"`
	Folder  string                `json:"folder"`
	Emails  []domain.EmailSummary `json:"emails"`
}

// Inbox handles GET /api/emails.
func (h *EmailHandler) Inbox(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}
	emails, err := h.list.Inbox(c.Request().Context(), identity)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, nonNilSummaries(emails))
}

// Sent handles GET /api/sent.
func (h *EmailHandler) Sent(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}
	emails, err := h.list.Sent(c.Request().Context(), identity)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, nonNilSummaries(emails))
}

// Get handles GET /api/emails/:id.
func (h *EmailHandler) Get(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}
	ctx := logger.WithEmailID(c.Request().Context(), c.Param("id"))
	c.SetRequest(c.Request().WithContext(ctx))
	email, err := h.get.Execute(ctx, identity, c.Param("id"))
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, email)
}

// Search handles GET /api/search?q=.
func (h *EmailHandler) Search(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}
	emails, err := h.search.Execute(c.Request().Context(), identity, c.QueryParam("q"))
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, nonNilSummaries(emails))
}

// Folder handles GET /s/:subdomain/:folder, the target of tenant rewrites.
func (h *EmailHandler) Folder(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}
	mailbox, folder := c.Param("subdomain"), c.Param("folder")
	emails, err := h.list.Folder(c.Request().Context(), identity, mailbox, folder)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, folderResponse{
		Mailbox: mailbox,
		Folder:  folder,
		Emails:  nonNilSummaries(emails),
	})
}

func nonNilSummaries(emails []domain.EmailSummary) []domain.EmailSummary {
	if emails == nil {
		return []domain.EmailSummary{}
	}
	return emails
}
