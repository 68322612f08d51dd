package usecase

import (
	"context"
	"log/slog"
	"strings"

	"mail-hub/internal/domain"
)

// LookupUsers fetches public profiles for the account switcher.
type LookupUsers struct {
	repo   domain.UserRepository
	logger *slog.Logger
}

// NewLookupUsers creates a new LookupUsers usecase.
func NewLookupUsers(r domain.UserRepository, l *slog.Logger) *LookupUsers {
	return &LookupUsers{repo: r, logger: l}
}

// Execute takes a comma separated address list.
func (uc *LookupUsers) Execute(ctx context.Context, emailsParam string) ([]domain.User, error) {
	var emails []string
	for _, e := range strings.Split(emailsParam, ",") {
		if e = strings.TrimSpace(e); e != "" {
			emails = append(emails, e)
		}
	}
	if len(emails) == 0 {
		return nil, domain.ErrInvalidInput
	}

	users, err := uc.repo.FindByEmails(ctx, emails)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to look up users", "count", len(emails), "error", err)
		return nil, err
	}
	return users, nil
}
