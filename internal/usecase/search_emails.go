package usecase

import (
	"context"
	"log/slog"
	"strings"

	"mail-hub/internal/domain"
)

const searchLimit = 10

// SearchEmails runs a case-insensitive search over the caller's inbox.
type SearchEmails struct {
	repo   domain.EmailRepository
	logger *slog.Logger
}

// NewSearchEmails creates a new SearchEmails usecase.
func NewSearchEmails(r domain.EmailRepository, l *slog.Logger) *SearchEmails {
	return &SearchEmails{repo: r, logger: l}
}

// Execute returns at most ten matches; a blank query matches nothing.
func (uc *SearchEmails) Execute(ctx context.Context, identity *domain.Identity, query string) ([]domain.EmailSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.EmailSummary{}, nil
	}

	emails, err := uc.repo.Search(ctx, identity.Email, query, searchLimit)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to search emails", "mailbox", identity.Mailbox(), "error", err)
		return nil, err
	}
	return emails, nil
}
