package domain

import "time"

// EmailCategory is the classification assigned to inbound mail.
type EmailCategory string

const (
	CategoryWork       EmailCategory = "Work"
	CategoryPersonal   EmailCategory = "Personal"
	CategoryFinance    EmailCategory = "Finance"
	CategorySocial     EmailCategory = "Social"
	CategoryPromotions EmailCategory = "Promotions"
	CategoryUpdates    EmailCategory = "Updates"
	CategorySpam       EmailCategory = "Spam"
	CategoryOther      EmailCategory = "Other"
)

// ParseCategory maps an analyzer label to a known category, falling back to
// CategoryOther for anything it does not recognise.
func ParseCategory(s string) EmailCategory {
	switch c := EmailCategory(s); c {
	case CategoryWork, CategoryPersonal, CategoryFinance, CategorySocial,
		CategoryPromotions, CategoryUpdates, CategorySpam:
		return c
	default:
		return CategoryOther
	}
}

// Email is a stored message, inbound or sent.
type Email struct {
	ID          string        `json:"id"`
	MessageID   string        `json:"messageId"`
	From        string        `json:"from"`
	FromEmail   string        `json:"fromEmail,omitempty"`
	To          []string      `json:"to"`
	Cc          []string      `json:"cc"`
	Bcc         []string      `json:"bcc"`
	ReplyTo     []string      `json:"replyTo"`
	Recipient   string        `json:"recipient"`
	Subject     string        `json:"subject"`
	TextBody    string        `json:"textBody,omitempty"`
	HTMLBody    string        `json:"htmlBody,omitempty"`
	ReceivedAt  time.Time     `json:"receivedAt"`
	Opened      bool          `json:"opened"`
	Category    EmailCategory `json:"category"`
	Confidence  float64       `json:"confidence"`
	Summary     string        `json:"summary,omitempty"`
	ActionItems []string      `json:"actionItems"`
}

// EmailSummary is the list-view projection of an Email.
type EmailSummary struct {
	ID         string        `json:"id"`
	From       string        `json:"from"`
	To         []string      `json:"to,omitempty"`
	Subject    string        `json:"subject"`
	ReceivedAt time.Time     `json:"receivedAt"`
	Category   EmailCategory `json:"category,omitempty"`
	Summary    string        `json:"summary,omitempty"`
	Opened     bool          `json:"opened"`
}

// Analysis is what the AI analyzer returns for an inbound email.
type Analysis struct {
	Category    string   `json:"category"`
	Confidence  float64  `json:"confidence"`
	Summary     string   `json:"summary"`
	ActionItems []string `json:"actionItems"`
}

// User is the public profile of a mailbox owner.
type User struct {
	ID    string `json:"-"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// OutboundEmail is a message handed to the mail provider.
type OutboundEmail struct {
	From    string
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Text    string
	ReplyTo string
}

// InboundEmail is the full message fetched from the provider after a
// receive notification.
type InboundEmail struct {
	ID        string
	MessageID string
	From      string
	To        []string
	Cc        []string
	Bcc       []string
	ReplyTo   []string
	Subject   string
	Text      string
	HTML      string
	CreatedAt time.Time
}
