package domain

import (
	"strings"
	"time"
)

// Identity represents an authenticated mailbox owner.
type Identity struct {
	UserID    string
	Email     string
	Name      string
	Image     string
	SessionID string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Mailbox returns the local part of the identity's address, which is also
// the subdomain label the mailbox is served under.
func (i *Identity) Mailbox() string {
	return MailboxOf(i.Email)
}

// CachedSession holds session data stored in the cache.
type CachedSession struct {
	UserID string
	Email  string
	Name   string
	Image  string
}

// MailboxOf splits an address at '@' and returns the lower-cased local part.
func MailboxOf(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return strings.ToLower(strings.TrimSpace(local))
}
