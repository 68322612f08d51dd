package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mail-hub/internal/domain"
)

// ListEmails serves the inbox and sent folders of the caller's mailbox.
type ListEmails struct {
	repo   domain.EmailRepository
	logger *slog.Logger
}

// NewListEmails creates a new ListEmails usecase.
func NewListEmails(r domain.EmailRepository, l *slog.Logger) *ListEmails {
	return &ListEmails{repo: r, logger: l}
}

// Inbox lists mail received by the identity, newest first.
func (uc *ListEmails) Inbox(ctx context.Context, identity *domain.Identity) ([]domain.EmailSummary, error) {
	emails, err := uc.repo.ListInbox(ctx, identity.Email)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to list inbox", "mailbox", identity.Mailbox(), "error", err)
		return nil, err
	}
	return emails, nil
}

// Sent lists mail sent by the identity, newest first.
func (uc *ListEmails) Sent(ctx context.Context, identity *domain.Identity) ([]domain.EmailSummary, error) {
	emails, err := uc.repo.ListSent(ctx, identity.Email)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to list sent mail", "mailbox", identity.Mailbox(), "error", err)
		return nil, err
	}
	return emails, nil
}

// Folder dispatches on a folder name from a rewritten mailbox path. The
// identity must own the mailbox the path names.
func (uc *ListEmails) Folder(ctx context.Context, identity *domain.Identity, mailbox, folder string) ([]domain.EmailSummary, error) {
	if !strings.EqualFold(identity.Mailbox(), mailbox) {
		return nil, domain.ErrMailboxMismatch
	}
	switch folder {
	case "inbox":
		return uc.Inbox(ctx, identity)
	case "sent":
		return uc.Sent(ctx, identity)
	default:
		return nil, fmt.Errorf("%w: unknown folder %q", domain.ErrInvalidInput, folder)
	}
}
