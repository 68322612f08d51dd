package handler

import (
	"net/http"

	"mail-hub/internal/domain"
	"mail-hub/middleware"

	"github.com/labstack/echo/v4"
)

// identityOf returns the identity RequireSession stored on the context.
func identityOf(c echo.Context) (*domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return identity, nil
}
