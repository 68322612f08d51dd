package domain

import "errors"

// Authentication errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrAuthFailed      = errors.New("authentication failed")
	ErrSessionInactive = errors.New("session is not active")
	ErrMissingIdentity = errors.New("missing identity in session")
	ErrMailboxMismatch = errors.New("session does not own this mailbox")
	ErrUntrustedOrigin = errors.New("request origin not trusted")
)

// Token errors.
var (
	ErrTokenGeneration = errors.New("token generation failed")
	ErrTokenInvalid    = errors.New("mailbox token invalid")
	ErrTokenSecretWeak = errors.New("mailbox token secret too weak")
)

// Mailbox errors.
var (
	ErrEmailNotFound     = errors.New("email not found")
	ErrEmailForbidden    = errors.New("email belongs to another mailbox")
	ErrRecipientNotFound = errors.New("recipient not registered")
	ErrInvalidInput      = errors.New("invalid input")
)

// External service errors.
var (
	ErrKratosUnavailable   = errors.New("identity provider unavailable")
	ErrDatabaseUnavailable = errors.New("database unavailable")
	ErrMailProviderFailed  = errors.New("mail provider request failed")
	ErrAnalyzerUnavailable = errors.New("email analyzer unavailable")
)

// Rate limiting errors.
var (
	ErrRateLimited = errors.New("rate limit exceeded")
)
