package usecase

import (
	"context"
	"log/slog"
	"strings"

	"mail-hub/internal/domain"
)

const tldrEmailCount = 5

// TLDRResult is the digest of a mailbox's unread mail.
type TLDRResult struct {
	TLDR   string
	Count  int
	Emails []domain.EmailSummary
}

// GenerateTLDR summarizes the newest unopened emails of a mailbox.
type GenerateTLDR struct {
	repo     domain.EmailRepository
	analyzer domain.EmailAnalyzer
	logger   *slog.Logger
}

// NewGenerateTLDR creates a new GenerateTLDR usecase.
func NewGenerateTLDR(r domain.EmailRepository, a domain.EmailAnalyzer, l *slog.Logger) *GenerateTLDR {
	return &GenerateTLDR{repo: r, analyzer: a, logger: l}
}

// Execute asks the analyzer for a digest and falls back to joining the
// stored per-email summaries when the analyzer is unavailable.
func (uc *GenerateTLDR) Execute(ctx context.Context, identity *domain.Identity) (*TLDRResult, error) {
	unopened, err := uc.repo.ListUnopened(ctx, identity.Email, tldrEmailCount)
	if err != nil {
		return nil, err
	}
	if len(unopened) == 0 {
		return &TLDRResult{Emails: []domain.EmailSummary{}}, nil
	}

	tldr, err := uc.analyzer.Digest(ctx, unopened)
	if err != nil {
		uc.logger.WarnContext(ctx, "digest unavailable, using stored summaries", "error", err)
		tldr = ""
	}
	if tldr == "" {
		tldr = joinSummaries(unopened)
	}

	return &TLDRResult{TLDR: tldr, Count: len(unopened), Emails: unopened}, nil
}

func joinSummaries(emails []domain.EmailSummary) string {
	parts := make([]string, 0, len(emails))
	for _, e := range emails {
		if e.Summary != "" {
			parts = append(parts, e.Subject+": "+e.Summary)
		}
	}
	return strings.Join(parts, " ")
}
