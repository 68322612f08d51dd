package usecase

import (
	"context"
	"log/slog"

	"mail-hub/internal/domain"
)

// BackfillAvatars gives every user without an avatar a generated one seeded
// by their address, so the account switcher always has an image to show.
type BackfillAvatars struct {
	store     domain.AvatarStore
	generator domain.AvatarGenerator
	logger    *slog.Logger
}

// NewBackfillAvatars creates a new BackfillAvatars usecase.
func NewBackfillAvatars(s domain.AvatarStore, g domain.AvatarGenerator, l *slog.Logger) *BackfillAvatars {
	return &BackfillAvatars{store: s, generator: g, logger: l}
}

// Execute returns the number of users updated. It stops at the first
// storage error.
func (uc *BackfillAvatars) Execute(ctx context.Context) (int, error) {
	users, err := uc.store.ListWithoutImage(ctx)
	if err != nil {
		return 0, err
	}
	uc.logger.InfoContext(ctx, "users without avatars", "count", len(users))

	updated := 0
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if err := uc.store.SetImage(ctx, u.ID, uc.generator.Generate(u.Email)); err != nil {
			uc.logger.ErrorContext(ctx, "failed to store avatar", "user_id", u.ID, "error", err)
			return updated, err
		}
		updated++
		uc.logger.DebugContext(ctx, "avatar updated", "mailbox", domain.MailboxOf(u.Email))
	}
	return updated, nil
}
