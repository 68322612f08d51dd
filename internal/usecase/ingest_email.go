package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mail-hub/internal/domain"
)

// InboundEvent is the receive notification posted by the mail provider.
type InboundEvent struct {
	Type      string           `json:"type" validate:"required,eq=email.received"`
	CreatedAt string           `json:"created_at" validate:"required"`
	Data      InboundEventData `json:"data" validate:"required"`
}

// InboundEventData identifies the received message.
type InboundEventData struct {
	EmailID   string   `json:"email_id" validate:"required"`
	MessageID string   `json:"message_id"`
	From      string   `json:"from"`
	Subject   string   `json:"subject"`
	To        []string `json:"to"`
	Cc        []string `json:"cc"`
	Bcc       []string `json:"bcc"`
}

// IngestResult reports what happened to an inbound event.
type IngestResult struct {
	Skipped   bool
	Recipient string
	Email     *domain.Email
	Analysis  *domain.Analysis
}

// IngestEmail files a received email into its recipient's mailbox.
type IngestEmail struct {
	fetcher   domain.InboundFetcher
	users     domain.UserRepository
	repo      domain.EmailRepository
	analyzer  domain.EmailAnalyzer
	sanitizer domain.HTMLSanitizer
	logger    *slog.Logger
}

// NewIngestEmail creates a new IngestEmail usecase.
func NewIngestEmail(
	f domain.InboundFetcher,
	u domain.UserRepository,
	r domain.EmailRepository,
	a domain.EmailAnalyzer,
	s domain.HTMLSanitizer,
	l *slog.Logger,
) *IngestEmail {
	return &IngestEmail{fetcher: f, users: u, repo: r, analyzer: a, sanitizer: s, logger: l}
}

// Execute fetches the full message, drops mail for unknown recipients,
// classifies it and stores it. Analyzer failures are not fatal: the email
// is stored as CategoryOther without a summary.
func (uc *IngestEmail) Execute(ctx context.Context, event InboundEvent) (*IngestResult, error) {
	inbound, err := uc.fetcher.FetchReceived(ctx, event.Data.EmailID)
	if err != nil {
		uc.logger.ErrorContext(ctx, "failed to fetch received email", "email_id", event.Data.EmailID, "error", err)
		return nil, err
	}
	if len(inbound.To) == 0 {
		return nil, fmt.Errorf("%w: received email %s has no recipients", domain.ErrMailProviderFailed, inbound.ID)
	}

	recipient := normalizeEmail(inbound.To[0])
	if _, err := uc.users.FindByEmail(ctx, recipient); err != nil {
		if errors.Is(err, domain.ErrRecipientNotFound) {
			uc.logger.InfoContext(ctx, "recipient not registered, skipping email",
				"recipient", recipient,
				"email_id", inbound.ID)
			return &IngestResult{Skipped: true, Recipient: recipient}, nil
		}
		return nil, err
	}

	content := inbound.Text
	if content == "" {
		content = inbound.HTML
	}
	if content == "" {
		content = "No content"
	}

	analysis, err := uc.analyzer.Analyze(ctx, inbound.Subject, content)
	if err != nil {
		uc.logger.WarnContext(ctx, "email analysis failed", "email_id", inbound.ID, "error", err)
		analysis = nil
	}

	messageID := inbound.MessageID
	if messageID == "" {
		messageID = event.Data.MessageID
	}
	receivedAt := inbound.CreatedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	email := &domain.Email{
		MessageID:   messageID,
		From:        inbound.From,
		To:          inbound.To,
		Cc:          nonNil(inbound.Cc),
		Bcc:         nonNil(inbound.Bcc),
		ReplyTo:     nonNil(inbound.ReplyTo),
		Recipient:   recipient,
		Subject:     inbound.Subject,
		TextBody:    inbound.Text,
		ReceivedAt:  receivedAt,
		Category:    domain.CategoryOther,
		ActionItems: []string{},
	}
	if inbound.HTML != "" {
		email.HTMLBody = uc.sanitizer.Sanitize(inbound.HTML)
	}
	if analysis != nil {
		email.Category = domain.ParseCategory(analysis.Category)
		email.Confidence = analysis.Confidence
		email.Summary = analysis.Summary
		email.ActionItems = nonNil(analysis.ActionItems)
	}

	if err := uc.repo.Create(ctx, email); err != nil {
		uc.logger.ErrorContext(ctx, "failed to store received email", "email_id", inbound.ID, "error", err)
		return nil, err
	}

	uc.logger.InfoContext(ctx, "email received",
		"mailbox", domain.MailboxOf(recipient),
		"id", email.ID,
		"category", email.Category)
	return &IngestResult{Recipient: recipient, Email: email, Analysis: analysis}, nil
}
