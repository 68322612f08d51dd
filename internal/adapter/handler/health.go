package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const healthPingTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database,omitempty"`
}

// HealthHandler serves /health. With a database configured it also checks
// that the pool answers.
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a health handler. db may be nil.
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Handle(c echo.Context) error {
	resp := healthResponse{Status: "healthy", Service: "mail-hub"}
	if h.db == nil {
		return c.JSON(http.StatusOK, resp)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "health check: database unreachable", "error", err)
		resp.Status = "unhealthy"
		resp.Database = "unreachable"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	resp.Database = "ok"
	return c.JSON(http.StatusOK, resp)
}
