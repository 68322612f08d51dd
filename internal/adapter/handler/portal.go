package handler

import (
	"log/slog"
	"net/http"

	"mail-hub/internal/domain"
	"mail-hub/internal/usecase"
	"mail-hub/utils/logger"

	"github.com/labstack/echo/v4"
)

// PortalHandler receives inbound mail notifications from the mail provider.
type PortalHandler struct {
	uc     *usecase.IngestEmail
	logger *slog.Logger
}

// NewPortalHandler creates a new portal handler.
func NewPortalHandler(uc *usecase.IngestEmail, l *slog.Logger) *PortalHandler {
	return &PortalHandler{uc: uc, logger: l}
}

type portalSkipped struct {
	Message   string `json:"message"`
	Recipient string `json:"recipient"`
}

type portalResponse struct {
	Analysis   *domain.Analysis `json:"analysis"`
	SavedEmail *domain.Email    `json:"savedEmail"`
}

// Handle processes POST /api/portal.
func (h *PortalHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()

	var event usecase.InboundEvent
	if err := c.Bind(&event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook payload")
	}
	if err := c.Validate(&event); err != nil {
		h.logger.WarnContext(ctx, "rejected webhook payload", "error", err, "remote_addr", c.RealIP())
		return mapDomainError(err)
	}

	ctx = logger.WithEmailID(ctx, event.Data.EmailID)
	c.SetRequest(c.Request().WithContext(ctx))
	result, err := h.uc.Execute(ctx, event)
	if err != nil {
		return mapDomainError(err)
	}
	if result.Skipped {
		return c.JSON(http.StatusOK, portalSkipped{
			Message:   "Email skipped - recipient not registered",
			Recipient: result.Recipient,
		})
	}
	return c.JSON(http.StatusOK, portalResponse{Analysis: result.Analysis, SavedEmail: result.Email})
}
