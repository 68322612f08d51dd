package usecase

import (
	"context"
	"log/slog"

	"mail-hub/internal/domain"
)

// ValidateSession orchestrates session validation with cache-through strategy.
type ValidateSession struct {
	validator domain.SessionValidator
	cache     domain.SessionCache
	logger    *slog.Logger
}

// NewValidateSession creates a new ValidateSession usecase.
func NewValidateSession(v domain.SessionValidator, c domain.SessionCache, l *slog.Logger) *ValidateSession {
	return &ValidateSession{validator: v, cache: c, logger: l}
}

// Execute resolves a session token to its identity.
func (uc *ValidateSession) Execute(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	if cached, found := uc.cache.Get(token); found {
		return &domain.Identity{
			UserID:    cached.UserID,
			Email:     cached.Email,
			Name:      cached.Name,
			Image:     cached.Image,
			SessionID: token,
		}, nil
	}

	identity, err := uc.validator.ValidateSession(ctx, token)
	if err != nil {
		uc.logger.DebugContext(ctx, "session validation failed", "error", err)
		return nil, err
	}

	uc.cache.Set(token, domain.CachedSession{
		UserID: identity.UserID,
		Email:  identity.Email,
		Name:   identity.Name,
		Image:  identity.Image,
	})

	identity.SessionID = token
	return identity, nil
}
