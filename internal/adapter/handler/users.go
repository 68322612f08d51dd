package handler

import (
	"net/http"

	"mail-hub/internal/domain"
	"mail-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// UsersHandler handles GET /api/users?emails=a,b for the account switcher.
type UsersHandler struct {
	uc *usecase.LookupUsers
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(uc *usecase.LookupUsers) *UsersHandler {
	return &UsersHandler{uc: uc}
}

// Handle returns the public profile of every registered address.
func (h *UsersHandler) Handle(c echo.Context) error {
	param := c.QueryParam("emails")
	if param == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "emails parameter required")
	}
	users, err := h.uc.Execute(c.Request().Context(), param)
	if err != nil {
		return mapDomainError(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}
