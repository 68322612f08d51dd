package usecase

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"mail-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEmailRepo implements domain.EmailRepository for testing.
type mockEmailRepo struct {
	inbox     []domain.EmailSummary
	sent      []domain.EmailSummary
	unopened  []domain.EmailSummary
	found     []domain.EmailSummary
	byID      map[string]*domain.Email
	err       error
	createErr error

	lastRecipient string
	lastQuery     string
	lastLimit     int
	created       []*domain.Email
}

func (m *mockEmailRepo) ListInbox(_ context.Context, recipient string) ([]domain.EmailSummary, error) {
	m.lastRecipient = recipient
	return m.inbox, m.err
}

func (m *mockEmailRepo) ListSent(_ context.Context, fromEmail string) ([]domain.EmailSummary, error) {
	m.lastRecipient = fromEmail
	return m.sent, m.err
}

func (m *mockEmailRepo) ListUnopened(_ context.Context, recipient string, limit int) ([]domain.EmailSummary, error) {
	m.lastRecipient = recipient
	m.lastLimit = limit
	return m.unopened, m.err
}

func (m *mockEmailRepo) Search(_ context.Context, recipient, query string, limit int) ([]domain.EmailSummary, error) {
	m.lastRecipient = recipient
	m.lastQuery = query
	m.lastLimit = limit
	return m.found, m.err
}

func (m *mockEmailRepo) GetByID(_ context.Context, id string) (*domain.Email, error) {
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrEmailNotFound
	}
	return e, nil
}

func (m *mockEmailRepo) Create(_ context.Context, email *domain.Email) error {
	if m.createErr != nil {
		return m.createErr
	}
	email.ID = "generated-id"
	m.created = append(m.created, email)
	return nil
}

var alice = &domain.Identity{UserID: "user-1", Email: "alice@example.com", Name: "Alice"}

func TestListEmails_Inbox(t *testing.T) {
	repo := &mockEmailRepo{inbox: []domain.EmailSummary{
		{ID: "e1", From: "bob@example.com", Subject: "Hi", ReceivedAt: time.Now()},
	}}

	got, err := NewListEmails(repo, slog.Default()).Inbox(context.Background(), alice)

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "alice@example.com", repo.lastRecipient)
}

func TestListEmails_Sent(t *testing.T) {
	repo := &mockEmailRepo{sent: []domain.EmailSummary{{ID: "s1"}, {ID: "s2"}}}

	got, err := NewListEmails(repo, slog.Default()).Sent(context.Background(), alice)

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "alice@example.com", repo.lastRecipient)
}

func TestListEmails_RepositoryError(t *testing.T) {
	repo := &mockEmailRepo{err: domain.ErrDatabaseUnavailable}

	_, err := NewListEmails(repo, slog.Default()).Inbox(context.Background(), alice)

	assert.True(t, errors.Is(err, domain.ErrDatabaseUnavailable))
}

func TestListEmails_Folder(t *testing.T) {
	repo := &mockEmailRepo{
		inbox: []domain.EmailSummary{{ID: "in"}},
		sent:  []domain.EmailSummary{{ID: "out"}},
	}
	uc := NewListEmails(repo, slog.Default())

	got, err := uc.Folder(context.Background(), alice, "alice", "inbox")
	require.NoError(t, err)
	assert.Equal(t, "in", got[0].ID)

	got, err = uc.Folder(context.Background(), alice, "Alice", "sent")
	require.NoError(t, err)
	assert.Equal(t, "out", got[0].ID)

	_, err = uc.Folder(context.Background(), alice, "bob", "inbox")
	assert.ErrorIs(t, err, domain.ErrMailboxMismatch)

	_, err = uc.Folder(context.Background(), alice, "alice", "trash")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
