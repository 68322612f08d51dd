package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mail-hub/internal/domain"
)

// DefaultResendBaseURL is the public Resend API endpoint.
const DefaultResendBaseURL = "https://api.resend.com"

// ResendGateway implements domain.MailSender and domain.InboundFetcher
// against the Resend REST API.
type ResendGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewResendGateway creates a new Resend gateway.
func NewResendGateway(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *ResendGateway {
	if baseURL == "" {
		baseURL = DefaultResendBaseURL
	}
	return &ResendGateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

type resendSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendSendResponse struct {
	ID string `json:"id"`
}

type resendReceivedEmail struct {
	Object    string   `json:"object"`
	ID        string   `json:"id"`
	To        []string `json:"to"`
	From      string   `json:"from"`
	CreatedAt string   `json:"created_at"`
	Subject   string   `json:"subject"`
	MessageID string   `json:"message_id"`
	Cc        []string `json:"cc"`
	Bcc       []string `json:"bcc"`
	ReplyTo   []string `json:"reply_to"`
	HTML      *string  `json:"html"`
	Text      *string  `json:"text"`
}

// Send submits an outbound email and returns the provider message id.
func (g *ResendGateway) Send(ctx context.Context, msg domain.OutboundEmail) (string, error) {
	payload, err := json.Marshal(resendSendRequest{
		From:    msg.From,
		To:      msg.To,
		Cc:      msg.Cc,
		Bcc:     msg.Bcc,
		Subject: msg.Subject,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMailProviderFailed, err)
	}

	var out resendSendResponse
	if err := g.do(ctx, http.MethodPost, "/emails", bytes.NewReader(payload), &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: response carried no id", domain.ErrMailProviderFailed)
	}
	return out.ID, nil
}

// FetchReceived retrieves the full content of a received email.
func (g *ResendGateway) FetchReceived(ctx context.Context, emailID string) (*domain.InboundEmail, error) {
	var raw resendReceivedEmail
	if err := g.do(ctx, http.MethodGet, "/emails/receiving/"+url.PathEscape(emailID), nil, &raw); err != nil {
		return nil, err
	}
	if raw.Object != "email" || raw.ID == "" || len(raw.To) == 0 {
		return nil, fmt.Errorf("%w: invalid received email %q", domain.ErrMailProviderFailed, emailID)
	}

	email := &domain.InboundEmail{
		ID:        raw.ID,
		MessageID: raw.MessageID,
		From:      raw.From,
		To:        raw.To,
		Cc:        raw.Cc,
		Bcc:       raw.Bcc,
		ReplyTo:   raw.ReplyTo,
		Subject:   raw.Subject,
	}
	if raw.Text != nil {
		email.Text = *raw.Text
	}
	if raw.HTML != nil {
		email.HTML = *raw.HTML
	}
	if t, err := time.Parse(time.RFC3339Nano, raw.CreatedAt); err == nil {
		email.CreatedAt = t.UTC()
	} else if t, err := time.Parse("2006-01-02 15:04:05.999999-07", raw.CreatedAt); err == nil {
		email.CreatedAt = t.UTC()
	}
	return email, nil
}

func (g *ResendGateway) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMailProviderFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMailProviderFailed, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			g.logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		g.logger.ErrorContext(ctx, "resend API returned non-2xx status",
			"path", path,
			"code", resp.StatusCode,
			"body", string(bodyBytes))
		return fmt.Errorf("%w: resend returned status %d", domain.ErrMailProviderFailed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMailProviderFailed, err)
	}
	return nil
}
