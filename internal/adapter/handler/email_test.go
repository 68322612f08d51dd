package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mail-hub/internal/domain"
	"mail-hub/internal/usecase"
	"mail-hub/utils/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newEmailHandler(repo *MockEmailRepository) *EmailHandler {
	l := discardLogger()
	return NewEmailHandler(
		usecase.NewListEmails(repo, l),
		usecase.NewGetEmail(repo, l),
		usecase.NewSearchEmails(repo, l),
	)
}

func TestEmailHandler_Inbox(t *testing.T) {
	t.Run("lists the caller's inbox", func(t *testing.T) {
		repo := new(MockEmailRepository)
		received := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
		repo.On("ListInbox", mock.Anything, "alice@example.com").Return([]domain.EmailSummary{
			{ID: "e1", From: "bob@example.com", Subject: "Hi", ReceivedAt: received},
		}, nil)

		e := newTestEcho()
		c, rec := newAuthedContext(e, httptest.NewRequest(http.MethodGet, "/api/emails", nil), alice)

		require.NoError(t, newEmailHandler(repo).Inbox(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var body []domain.EmailSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, "e1", body[0].ID)
		repo.AssertExpectations(t)
	})

	t.Run("empty inbox is an empty array", func(t *testing.T) {
		repo := new(MockEmailRepository)
		repo.On("ListInbox", mock.Anything, "alice@example.com").Return(nil, nil)

		e := newTestEcho()
		c, rec := newAuthedContext(e, httptest.NewRequest(http.MethodGet, "/api/emails", nil), alice)

		require.NoError(t, newEmailHandler(repo).Inbox(c))
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("requires identity", func(t *testing.T) {
		e := newTestEcho()
		c, _ := newAuthedContext(e, httptest.NewRequest(http.MethodGet, "/api/emails", nil), nil)

		err := newEmailHandler(new(MockEmailRepository)).Inbox(c)
		requireHTTPError(t, err, http.StatusUnauthorized)
	})

	t.Run("database failure", func(t *testing.T) {
		repo := new(MockEmailRepository)
		repo.On("ListInbox", mock.Anything, "alice@example.com").Return(nil, domain.ErrDatabaseUnavailable)

		e := newTestEcho()
		c, _ := newAuthedContext(e, httptest.NewRequest(http.MethodGet, "/api/emails", nil), alice)

		err := newEmailHandler(repo).Inbox(c)
		requireHTTPError(t, err, http.StatusServiceUnavailable)
	})
}

func TestEmailHandler_Sent(t *testing.T) {
	repo := new(MockEmailRepository)
	repo.On("ListSent", mock.Anything, "alice@example.com").Return([]domain.EmailSummary{{ID: "s1"}}, nil)

	e := newTestEcho()
	c, rec := newAuthedContext(e, httptest.NewRequest(http.MethodGet, "/api/sent", nil), alice)

	require.NoError(t, newEmailHandler(repo).Sent(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"s1"`)
}

func TestEmailHandler_Get(t *testing.T) {
	tests := []struct {
		name     string
		email    *domain.Email
		err      error
		wantCode int
	}{
		{"own email", &domain.Email{ID: "e1", Recipient: "alice@example.com", Subject: "Hi"}, nil, http.StatusOK},
		{"foreign email", &domain.Email{ID: "e1", Recipient: "bob@example.com"}, nil, http.StatusForbidden},
		{"missing email", nil, domain.ErrEmailNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockEmailRepository)
			if tt.email != nil {
				repo.On("GetByID", mock.Anything, "e1").Return(tt.email, nil)
			} else {
				repo.On("GetByID", mock.Anything, "e1").Return(nil, tt.err)
			}

			e := newTestEcho()
			c, rec := newAuthedContext(e, httptest.NewRequest(http.MethodGet, "/api/emails/e1", nil), alice)
			c.SetParamNames("id")
			c.SetParamValues("e1")

			err := newEmailHandler(repo).Get(c)
			if tt.wantCode == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Contains(t, rec.Body.String(), `"subject":"Hi"`)
				return
			}
			requireHTTPError(t, err, tt.wantCode)
		})
	}
}

func TestEmailHandler_GetTagsContextWithEmailID(t *testing.T) {
	repo := new(MockEmailRepository)
	tagged := mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Value(logger.EmailIDKey) == "e1"
	})
	repo.On("GetByID", tagged, "e1").Return(&domain.Email{ID: "e1", Recipient: "alice@example.com"}, nil)

	e := newTestEcho()
	c, _ := newAuthedContext(e, httptest.NewRequest(http.MethodGet, "/api/emails/e1", nil), alice)
	c.SetParamNames("id")
	c.SetParamValues("e1")

	require.NoError(t, newEmailHandler(repo).Get(c))
	assert.Equal(t, "e1", c.Request().Context().Value(logger.EmailIDKey))
	repo.AssertExpectations(t)
}

func TestEmailHandler_Search(t *testing.T) {
	t.Run("blank query returns empty list without touching the repository", func(t *testing.T) {
		repo := new(MockEmailRepository)

		e := newTestEcho()
		c, rec := newAuthedContext(e, httptest.NewRequest(http.MethodGet, "/api/search?q=%20", nil), alice)

		require.NoError(t, newEmailHandler(repo).Search(c))
		assert.JSONEq(t, "[]", rec.Body.String())
		repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("query is passed with the result limit", func(t *testing.T) {
		repo := new(MockEmailRepository)
		repo.On("Search", mock.Anything, "alice@example.com", "invoice", 10).
			Return([]domain.EmailSummary{{ID: "e9", Subject: "Invoice"}}, nil)

		e := newTestEcho()
		c, rec := newAuthedContext(e, httptest.NewRequest(http.MethodGet, "/api/search?q=invoice", nil), alice)

		require.NoError(t, newEmailHandler(repo).Search(c))
		assert.Contains(t, rec.Body.String(), `"id":"e9"`)
		repo.AssertExpectations(t)
	})
}

func TestEmailHandler_Folder(t *testing.T) {
	t.Run("own mailbox", func(t *testing.T) {
		repo := new(MockEmailRepository)
		repo.On("ListSent", mock.Anything, "alice@example.com").Return([]domain.EmailSummary{}, nil)

		e := newTestEcho()
		c, rec := newAuthedContext(e, httptest.NewRequest(http.MethodGet, "/s/alice/sent", nil), alice)
		c.SetParamNames("subdomain", "folder")
		c.SetParamValues("alice", "sent")

		require.NoError(t, newEmailHandler(repo).Folder(c))
		assert.JSONEq(t, `{"mailbox":"alice","folder":"sent","emails":[]}`, rec.Body.String())
	})

	t.Run("someone else's mailbox", func(t *testing.T) {
		e := newTestEcho()
		c, _ := newAuthedContext(e, httptest.NewRequest(http.MethodGet, "/s/bob/inbox", nil), alice)
		c.SetParamNames("subdomain", "folder")
		c.SetParamValues("bob", "inbox")

		err := newEmailHandler(new(MockEmailRepository)).Folder(c)
		requireHTTPError(t, err, http.StatusForbidden)
	})

	t.Run("unknown folder", func(t *testing.T) {
		e := newTestEcho()
		c, _ := newAuthedContext(e, httptest.NewRequest(http.MethodGet, "/s/alice/trash", nil), alice)
		c.SetParamNames("subdomain", "folder")
		c.SetParamValues("alice", "trash")

		err := newEmailHandler(new(MockEmailRepository)).Folder(c)
		requireHTTPError(t, err, http.StatusBadRequest)
	})
}
