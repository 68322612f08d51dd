package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mail-hub/internal/domain"
)

// SendEmailInput is the compose form submitted by the dashboard.
type SendEmailInput struct {
	To      []string `json:"to" validate:"required,min=1,dive,email"`
	Cc      []string `json:"cc" validate:"omitempty,dive,email"`
	Bcc     []string `json:"bcc" validate:"omitempty,dive,email"`
	Subject string   `json:"subject" validate:"required"`
	Body    string   `json:"body" validate:"required"`
	ReplyTo string   `json:"replyTo" validate:"omitempty,email"`
}

// SendEmail delivers a message through the mail provider and files it in
// the sender's sent folder.
type SendEmail struct {
	sender domain.MailSender
	repo   domain.EmailRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewSendEmail creates a new SendEmail usecase.
func NewSendEmail(s domain.MailSender, r domain.EmailRepository, l *slog.Logger) *SendEmail {
	return &SendEmail{sender: s, repo: r, now: time.Now, logger: l}
}

// Execute sends in as the identity and returns the provider's message id.
func (uc *SendEmail) Execute(ctx context.Context, identity *domain.Identity, in SendEmailInput) (string, error) {
	if len(in.To) == 0 {
		return "", fmt.Errorf("%w: at least one recipient is required", domain.ErrInvalidInput)
	}

	from := identity.Email
	if identity.Name != "" {
		from = fmt.Sprintf("%s <%s>", identity.Name, identity.Email)
	}
	replyTo := in.ReplyTo
	if replyTo == "" {
		replyTo = identity.Email
	}

	messageID, err := uc.sender.Send(ctx, domain.OutboundEmail{
		From:    from,
		To:      in.To,
		Cc:      in.Cc,
		Bcc:     in.Bcc,
		Subject: in.Subject,
		Text:    in.Body,
		ReplyTo: replyTo,
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "mail provider rejected message", "mailbox", identity.Mailbox(), "error", err)
		return "", err
	}

	record := &domain.Email{
		MessageID:   messageID,
		From:        from,
		FromEmail:   identity.Email,
		To:          in.To,
		Cc:          nonNil(in.Cc),
		Bcc:         nonNil(in.Bcc),
		ReplyTo:     []string{replyTo},
		Recipient:   in.To[0],
		Subject:     in.Subject,
		TextBody:    in.Body,
		ReceivedAt:  uc.now().UTC(),
		Category:    domain.CategoryOther,
		ActionItems: []string{},
	}
	if err := uc.repo.Create(ctx, record); err != nil {
		uc.logger.ErrorContext(ctx, "sent message could not be stored",
			"mailbox", identity.Mailbox(),
			"message_id", messageID,
			"error", err)
		return "", err
	}

	uc.logger.InfoContext(ctx, "message sent",
		"mailbox", identity.Mailbox(),
		"message_id", messageID,
		"recipients", len(in.To)+len(in.Cc)+len(in.Bcc))
	return messageID, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
