package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitchHandler_Handle(t *testing.T) {
	h := NewSwitchHandler("example.com")

	t.Run("redirects to the mailbox subdomain", func(t *testing.T) {
		e := newTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/switch?to="+url.QueryEscape("Bob@example.com"), nil)
		rec := httptest.NewRecorder()

		require.NoError(t, h.Handle(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "https://bob.example.com", rec.Header().Get(echo.HeaderLocation))
	})

	for _, to := range []string{"", "bob", "@example.com", "evil.com/x@example.com"} {
		t.Run("rejects "+to, func(t *testing.T) {
			e := newTestEcho()
			req := httptest.NewRequest(http.MethodGet, "/switch?to="+url.QueryEscape(to), nil)

			requireHTTPError(t, h.Handle(e.NewContext(req, httptest.NewRecorder())), http.StatusBadRequest)
		})
	}
}
