package handler

import (
	"net/http"

	"mail-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SendHandler handles POST /api/send.
type SendHandler struct {
	uc *usecase.SendEmail
}

// NewSendHandler creates a new send handler.
func NewSendHandler(uc *usecase.SendEmail) *SendHandler {
	return &SendHandler{uc: uc}
}

type sendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

// Handle binds and validates the message, then sends it as the caller.
func (h *SendHandler) Handle(c echo.Context) error {
	identity, err := identityOf(c)
	if err != nil {
		return err
	}

	var in usecase.SendEmailInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&in); err != nil {
		return mapDomainError(err)
	}

	messageID, err := h.uc.Execute(c.Request().Context(), identity, in)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, sendResponse{Success: true, MessageID: messageID})
}
