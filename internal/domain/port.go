package domain

import "context"

// SessionValidator resolves a session token to the identity that owns it.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*Identity, error)
}

// SessionCache provides read/write access to cached session data.
type SessionCache interface {
	Get(token string) (*CachedSession, bool)
	Set(token string, session CachedSession)
}

// TokenVerifier checks mailbox bearer tokens.
type TokenVerifier interface {
	VerifyMailboxToken(token string) (*Identity, error)
}

// TokenIssuer signs and verifies mailbox bearer tokens.
type TokenIssuer interface {
	IssueMailboxToken(identity *Identity) (string, error)
	TokenVerifier
}

// AccountStore is a single-key durable store backing the account registry.
// Load returns (nil, nil) when nothing has been stored under key yet.
type AccountStore interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// EmailRepository persists and queries mailbox contents.
type EmailRepository interface {
	ListInbox(ctx context.Context, recipient string) ([]EmailSummary, error)
	ListSent(ctx context.Context, fromEmail string) ([]EmailSummary, error)
	ListUnopened(ctx context.Context, recipient string, limit int) ([]EmailSummary, error)
	Search(ctx context.Context, recipient, query string, limit int) ([]EmailSummary, error)
	GetByID(ctx context.Context, id string) (*Email, error)
	Create(ctx context.Context, email *Email) error
}

// UserRepository looks up mailbox owners.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByEmails(ctx context.Context, emails []string) ([]User, error)
}

// MailSender hands outbound mail to the transactional email provider.
type MailSender interface {
	Send(ctx context.Context, msg OutboundEmail) (string, error)
}

// InboundFetcher retrieves the full content of a received email.
type InboundFetcher interface {
	FetchReceived(ctx context.Context, emailID string) (*InboundEmail, error)
}

// EmailAnalyzer classifies and summarizes email with an AI model.
type EmailAnalyzer interface {
	Analyze(ctx context.Context, subject, content string) (*Analysis, error)
	Digest(ctx context.Context, emails []EmailSummary) (string, error)
}

// HTMLSanitizer strips unsafe markup from email bodies.
type HTMLSanitizer interface {
	Sanitize(html string) string
}

// AvatarStore lists users lacking an avatar and stores generated ones.
type AvatarStore interface {
	ListWithoutImage(ctx context.Context) ([]User, error)
	SetImage(ctx context.Context, userID, image string) error
}

// AvatarGenerator derives a deterministic avatar image reference from a seed.
type AvatarGenerator interface {
	Generate(seed string) string
}
