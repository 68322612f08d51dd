package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"mail-hub/internal/domain"
)

// SessionResult holds the data returned by GetSession.
type SessionResult struct {
	UserID       string
	Email        string
	Name         string
	Image        string
	Mailbox      string
	MailboxURL   string
	SessionID    string
	MailboxToken string
}

// GetSession resolves the caller's session and issues a mailbox token the
// dashboard can present as a bearer credential on other subdomains.
type GetSession struct {
	sessions   *ValidateSession
	token      domain.TokenIssuer
	rootDomain string
	logger     *slog.Logger
}

// NewGetSession creates a new GetSession usecase.
func NewGetSession(s *ValidateSession, t domain.TokenIssuer, rootDomain string, l *slog.Logger) *GetSession {
	return &GetSession{sessions: s, token: t, rootDomain: SiteRoot(rootDomain), logger: l}
}

// Execute validates the session token and signs a mailbox token for it.
func (uc *GetSession) Execute(ctx context.Context, sessionToken string) (*SessionResult, error) {
	identity, err := uc.sessions.Execute(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	mailboxToken, err := uc.token.IssueMailboxToken(identity)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to issue mailbox token", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}

	return &SessionResult{
		UserID:       identity.UserID,
		Email:        identity.Email,
		Name:         identity.Name,
		Image:        identity.Image,
		Mailbox:      identity.Mailbox(),
		MailboxURL:   MailboxURL(identity.Email, uc.rootDomain),
		SessionID:    identity.SessionID,
		MailboxToken: mailboxToken,
	}, nil
}
