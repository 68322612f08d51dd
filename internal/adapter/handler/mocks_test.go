package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"mail-hub/internal/domain"
	"mail-hub/internal/infrastructure/validation"
	"mail-hub/middleware"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmailRepository is a mock implementation of domain.EmailRepository
type MockEmailRepository struct {
	mock.Mock
}

func (m *MockEmailRepository) ListInbox(ctx context.Context, recipient string) ([]domain.EmailSummary, error) {
	args := m.Called(ctx, recipient)
	return summaries(args.Get(0)), args.Error(1)
}

func (m *MockEmailRepository) ListSent(ctx context.Context, fromEmail string) ([]domain.EmailSummary, error) {
	args := m.Called(ctx, fromEmail)
	return summaries(args.Get(0)), args.Error(1)
}

func (m *MockEmailRepository) ListUnopened(ctx context.Context, recipient string, limit int) ([]domain.EmailSummary, error) {
	args := m.Called(ctx, recipient, limit)
	return summaries(args.Get(0)), args.Error(1)
}

func (m *MockEmailRepository) Search(ctx context.Context, recipient, query string, limit int) ([]domain.EmailSummary, error) {
	args := m.Called(ctx, recipient, query, limit)
	return summaries(args.Get(0)), args.Error(1)
}

func (m *MockEmailRepository) GetByID(ctx context.Context, id string) (*domain.Email, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Email), args.Error(1)
}

func (m *MockEmailRepository) Create(ctx context.Context, email *domain.Email) error {
	args := m.Called(ctx, email)
	if email.ID == "" {
		email.ID = "generated-id"
	}
	return args.Error(0)
}

func summaries(v any) []domain.EmailSummary {
	if v == nil {
		return nil
	}
	return v.([]domain.EmailSummary)
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmails(ctx context.Context, emails []string) ([]domain.User, error) {
	args := m.Called(ctx, emails)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockSessionValidator is a mock implementation of domain.SessionValidator
type MockSessionValidator struct {
	mock.Mock
}

func (m *MockSessionValidator) ValidateSession(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

// MockMailSender is a mock implementation of domain.MailSender
type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) Send(ctx context.Context, msg domain.OutboundEmail) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

// MockInboundFetcher is a mock implementation of domain.InboundFetcher
type MockInboundFetcher struct {
	mock.Mock
}

func (m *MockInboundFetcher) FetchReceived(ctx context.Context, emailID string) (*domain.InboundEmail, error) {
	args := m.Called(ctx, emailID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InboundEmail), args.Error(1)
}

// MockEmailAnalyzer is a mock implementation of domain.EmailAnalyzer
type MockEmailAnalyzer struct {
	mock.Mock
}

func (m *MockEmailAnalyzer) Analyze(ctx context.Context, subject, content string) (*domain.Analysis, error) {
	args := m.Called(ctx, subject, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}

func (m *MockEmailAnalyzer) Digest(ctx context.Context, emails []domain.EmailSummary) (string, error) {
	args := m.Called(ctx, emails)
	return args.String(0), args.Error(1)
}

var alice = &domain.Identity{
	UserID: "user-1",
	Email:  "alice@example.com",
	Name:   "Alice",
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	return e
}

// newAuthedContext builds a context as RequireSession would leave it.
func newAuthedContext(e *echo.Echo, req *http.Request, identity *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identity != nil {
		middleware.SetIdentity(c, identity)
	}
	return c, rec
}

func requireHTTPError(t *testing.T, err error, code int) *echo.HTTPError {
	t.Helper()
	var httpErr *echo.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *echo.HTTPError, got %v", err)
	require.Equal(t, code, httpErr.Code)
	return httpErr
}
