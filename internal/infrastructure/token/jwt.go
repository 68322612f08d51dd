package token

import (
	"fmt"
	"time"

	"mail-hub/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HS256 secret the issuer accepts.
const MinSecretLength = 32

// JWTConfig holds JWT generation configuration.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// mailboxClaims are the claims of a mailbox bearer token.
type mailboxClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Mailbox string `json:"mailbox"`
	Sid     string `json:"sid"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies mailbox tokens.
// Implements domain.TokenIssuer.
type JWTIssuer struct {
	cfg JWTConfig
	now func() time.Time
}

// NewJWTIssuer creates a new JWT issuer.
func NewJWTIssuer(cfg JWTConfig) (*JWTIssuer, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, domain.ErrTokenSecretWeak
	}
	return &JWTIssuer{cfg: cfg, now: time.Now}, nil
}

// IssueMailboxToken generates a signed JWT for the identity.
func (j *JWTIssuer) IssueMailboxToken(identity *domain.Identity) (string, error) {
	now := j.now()
	claims := mailboxClaims{
		Email:   identity.Email,
		Name:    identity.Name,
		Mailbox: identity.Mailbox(),
		Sid:     identity.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.cfg.Issuer,
			Audience:  jwt.ClaimStrings{j.cfg.Audience},
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.cfg.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.cfg.Secret))
}

// VerifyMailboxToken checks signature, issuer, audience and expiry and
// returns the identity the token was issued for.
func (j *JWTIssuer) VerifyMailboxToken(tokenStr string) (*domain.Identity, error) {
	claims := &mailboxClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return []byte(j.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.cfg.Issuer),
		jwt.WithAudience(j.cfg.Audience),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: missing subject or email", domain.ErrTokenInvalid)
	}

	identity := &domain.Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		SessionID: claims.Sid,
	}
	if claims.Mailbox != identity.Mailbox() {
		return nil, fmt.Errorf("%w: mailbox claim does not match email", domain.ErrTokenInvalid)
	}
	return identity, nil
}
