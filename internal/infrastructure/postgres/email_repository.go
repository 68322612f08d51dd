package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mail-hub/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const summaryColumns = `id, "from", "to", subject, "receivedAt", category, summary, opened`

// EmailRepository implements domain.EmailRepository for PostgreSQL.
type EmailRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewEmailRepository creates a new PostgreSQL email repository.
func NewEmailRepository(db DatabaseIface, logger *slog.Logger) *EmailRepository {
	return &EmailRepository{
		db:     db,
		logger: logger.With("component", "email_repository"),
	}
}

// ListInbox returns mail addressed to recipient, newest first.
func (r *EmailRepository) ListInbox(ctx context.Context, recipient string) ([]domain.EmailSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM email
		WHERE recipient = $1
		ORDER BY "receivedAt" DESC`
	return r.listSummaries(ctx, query, recipient)
}

// ListSent returns mail sent from fromEmail, newest first.
func (r *EmailRepository) ListSent(ctx context.Context, fromEmail string) ([]domain.EmailSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM email
		WHERE "fromEmail" = $1
		ORDER BY "receivedAt" DESC`
	return r.listSummaries(ctx, query, fromEmail)
}

// ListUnopened returns up to limit unopened emails of recipient.
func (r *EmailRepository) ListUnopened(ctx context.Context, recipient string, limit int) ([]domain.EmailSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM email
		WHERE recipient = $1 AND opened = false
		ORDER BY "receivedAt" DESC
		LIMIT $2`
	return r.listSummaries(ctx, query, recipient, limit)
}

// Search matches query case-insensitively against subject, sender and
// plain text body.
func (r *EmailRepository) Search(ctx context.Context, recipient, query string, limit int) ([]domain.EmailSummary, error) {
	sql := `SELECT ` + summaryColumns + ` FROM email
		WHERE recipient = $1
		  AND (subject ILIKE $2 OR "from" ILIKE $2 OR "textBody" ILIKE $2)
		ORDER BY "receivedAt" DESC
		LIMIT $3`
	return r.listSummaries(ctx, sql, recipient, "%"+escapeLike(query)+"%", limit)
}

// GetByID loads one email with its bodies.
func (r *EmailRepository) GetByID(ctx context.Context, id string) (*domain.Email, error) {
	query := `SELECT id, "messageId", "from", "fromEmail", "to", cc, bcc, "replyTo", recipient,
			subject, "textBody", "htmlBody", "receivedAt", opened, category, confidence,
			summary, "actionItems"
		FROM email
		WHERE id = $1`

	var (
		e                                      domain.Email
		fromEmail, textBody, htmlBody, summary *string
		category                               string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.MessageID, &e.From, &fromEmail, &e.To, &e.Cc, &e.Bcc, &e.ReplyTo, &e.Recipient,
		&e.Subject, &textBody, &htmlBody, &e.ReceivedAt, &e.Opened, &category, &e.Confidence,
		&summary, &e.ActionItems,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmailNotFound
		}
		r.logger.ErrorContext(ctx, "failed to get email", "id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrDatabaseUnavailable, err)
	}

	e.FromEmail = deref(fromEmail)
	e.TextBody = deref(textBody)
	e.HTMLBody = deref(htmlBody)
	e.Summary = deref(summary)
	e.Category = domain.ParseCategory(category)
	return &e, nil
}

// Create inserts email, assigning an id when it has none.
func (r *EmailRepository) Create(ctx context.Context, email *domain.Email) error {
	if email.ID == "" {
		email.ID = uuid.NewString()
	}

	query := `
		INSERT INTO email (
			id, "messageId", "from", "fromEmail", "to", cc, bcc, "replyTo", recipient,
			subject, "textBody", "htmlBody", "receivedAt", opened, category, confidence,
			summary, "actionItems"
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)`

	_, err := r.db.Exec(ctx, query,
		email.ID,
		email.MessageID,
		email.From,
		nullable(email.FromEmail),
		email.To,
		email.Cc,
		email.Bcc,
		email.ReplyTo,
		email.Recipient,
		email.Subject,
		nullable(email.TextBody),
		nullable(email.HTMLBody),
		email.ReceivedAt,
		email.Opened,
		string(email.Category),
		email.Confidence,
		nullable(email.Summary),
		email.ActionItems,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to insert email", "id", email.ID, "error", err)
		return fmt.Errorf("%w: %w", domain.ErrDatabaseUnavailable, err)
	}
	return nil
}

func (r *EmailRepository) listSummaries(ctx context.Context, query string, args ...any) ([]domain.EmailSummary, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to query emails", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrDatabaseUnavailable, err)
	}
	defer rows.Close()

	emails := make([]domain.EmailSummary, 0)
	for rows.Next() {
		var (
			e        domain.EmailSummary
			category string
			summary  *string
		)
		if err := rows.Scan(&e.ID, &e.From, &e.To, &e.Subject, &e.ReceivedAt, &category, &summary, &e.Opened); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrDatabaseUnavailable, err)
		}
		e.Category = domain.ParseCategory(category)
		e.Summary = deref(summary)
		emails = append(emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDatabaseUnavailable, err)
	}
	return emails, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
