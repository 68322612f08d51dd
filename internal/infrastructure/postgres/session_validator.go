package postgres

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"mail-hub/internal/domain"

	"github.com/jackc/pgx/v5"
)

// SessionValidator implements domain.SessionValidator against the session
// table the sign-in service writes.
type SessionValidator struct {
	db     DatabaseIface
	secret []byte
	now    func() time.Time
	logger *slog.Logger
}

// NewSessionValidator creates a validator. When secret is set, cookie values
// must carry a valid "<token>.<signature>" HMAC-SHA256 signature.
func NewSessionValidator(db DatabaseIface, secret string, logger *slog.Logger) *SessionValidator {
	return &SessionValidator{
		db:     db,
		secret: []byte(secret),
		now:    time.Now,
		logger: logger.With("component", "session_validator"),
	}
}

// ValidateSession resolves a session cookie value to its owner.
func (v *SessionValidator) ValidateSession(ctx context.Context, cookie string) (*domain.Identity, error) {
	token, err := v.sessionToken(cookie)
	if err != nil {
		return nil, err
	}

	query := `SELECT s.id, s."expiresAt", s."createdAt", u.id, u.email, u.name, u.image
		FROM "session" s
		JOIN "user" u ON u.id = s."userId"
		WHERE s.token = $1`

	var (
		identity domain.Identity
		image    *string
	)
	err = v.db.QueryRow(ctx, query, token).Scan(
		&identity.SessionID, &identity.ExpiresAt, &identity.CreatedAt,
		&identity.UserID, &identity.Email, &identity.Name, &image,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		v.logger.ErrorContext(ctx, "failed to look up session", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrDatabaseUnavailable, err)
	}

	if !identity.ExpiresAt.After(v.now()) {
		return nil, domain.ErrSessionExpired
	}
	if identity.Email == "" {
		return nil, domain.ErrMissingIdentity
	}
	identity.Image = deref(image)
	return &identity, nil
}

func (v *SessionValidator) sessionToken(cookie string) (string, error) {
	if unescaped, err := url.QueryUnescape(cookie); err == nil {
		cookie = unescaped
	}
	if cookie == "" {
		return "", domain.ErrSessionNotFound
	}

	token, signature, signed := cut(cookie)
	if len(v.secret) == 0 {
		return token, nil
	}
	if !signed {
		return "", domain.ErrAuthFailed
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(token))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", domain.ErrAuthFailed
	}
	return token, nil
}

// cut splits "<token>.<signature>" at the last dot; the signature is
// base64 and may not contain one.
func cut(cookie string) (token, signature string, ok bool) {
	i := strings.LastIndex(cookie, ".")
	if i <= 0 {
		return cookie, "", false
	}
	return cookie[:i], cookie[i+1:], true
}
