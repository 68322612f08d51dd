package handler

import (
	"net/http"

	"mail-hub/internal/domain"
	"mail-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// TLDRHandler handles GET /api/tldr.
type TLDRHandler struct {
	uc *usecase.GenerateTLDR
}

// NewTLDRHandler creates a new TLDR handler.
func NewTLDRHandler(uc *usecase.GenerateTLDR) *TLDRHandler {
	return &TLDRHandler{uc: uc}
}

type tldrResponse struct {
	TLDR    *string               `json:"tldr"`
	Message string                `json:"message,omitempty"`
	Count   int                   `json:"count"`
	Emails  []domain.EmailSummary `json:"emails,omitempty"`
}

// Handle digests the caller's newest unread mail.
func (h *TLDRHandler) Handle(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}
	result, err := h.uc.Execute(c.Request().Context(), identity)
	if err != nil {
		return mapDomainError(err)
	}
	if result.Count == 0 {
		return c.JSON(http.StatusOK, tldrResponse{Message: "No unread emails"})
	}
	return c.JSON(http.StatusOK, tldrResponse{
		TLDR:   &result.TLDR,
		Count:  result.Count,
		Emails: result.Emails,
	})
}
