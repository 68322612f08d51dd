package usecase

import (
	"context"
	"log/slog"
	"strings"

	"mail-hub/internal/domain"
)

// GetEmail returns one message with its full body.
type GetEmail struct {
	repo   domain.EmailRepository
	logger *slog.Logger
}

// NewGetEmail creates a new GetEmail usecase.
func NewGetEmail(r domain.EmailRepository, l *slog.Logger) *GetEmail {
	return &GetEmail{repo: r, logger: l}
}

// Execute loads the email and checks that the identity is its recipient.
func (uc *GetEmail) Execute(ctx context.Context, identity *domain.Identity, id string) (*domain.Email, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidInput
	}

	email, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(email.Recipient, identity.Email) {
		uc.logger.WarnContext(ctx, "mailbox tried to read foreign email",
			"mailbox", identity.Mailbox(),
			"email_id", id)
		return nil, domain.ErrEmailForbidden
	}
	return email, nil
}
