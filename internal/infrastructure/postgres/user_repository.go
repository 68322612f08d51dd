package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mail-hub/internal/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements domain.UserRepository for PostgreSQL.
type UserRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db DatabaseIface, logger *slog.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger.With("component", "user_repository"),
	}
}

// FindByEmail returns the user registered with email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, name, image FROM "user" WHERE lower(email) = $1`

	var (
		u     domain.User
		image *string
	)
	err := r.db.QueryRow(ctx, query, strings.ToLower(email)).Scan(&u.ID, &u.Email, &u.Name, &image)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecipientNotFound
		}
		r.logger.ErrorContext(ctx, "failed to find user", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrDatabaseUnavailable, err)
	}
	u.Image = deref(image)
	return &u, nil
}

// FindByEmails returns the users registered with any of emails. Unknown
// addresses are left out.
func (r *UserRepository) FindByEmails(ctx context.Context, emails []string) ([]domain.User, error) {
	lowered := make([]string, len(emails))
	for i, e := range emails {
		lowered[i] = strings.ToLower(e)
	}
	query := `SELECT id, email, name, image FROM "user" WHERE lower(email) = ANY($1)`
	return r.collect(ctx, query, lowered)
}

// ListWithoutImage returns users that have no avatar yet.
func (r *UserRepository) ListWithoutImage(ctx context.Context) ([]domain.User, error) {
	query := `SELECT id, email, name, image FROM "user" WHERE image IS NULL OR image = ''`
	return r.collect(ctx, query)
}

// SetImage stores an avatar reference for a user.
func (r *UserRepository) SetImage(ctx context.Context, userID, image string) error {
	query := `UPDATE "user" SET image = $1, "updatedAt" = now() WHERE id = $2`

	tag, err := r.db.Exec(ctx, query, image, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to update user image", "user_id", userID, "error", err)
		return fmt.Errorf("%w: %w", domain.ErrDatabaseUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRecipientNotFound
	}
	return nil
}

func (r *UserRepository) collect(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to query users", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrDatabaseUnavailable, err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var (
			u     domain.User
			image *string
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &image); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrDatabaseUnavailable, err)
		}
		u.Image = deref(image)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDatabaseUnavailable, err)
	}
	return users, nil
}
