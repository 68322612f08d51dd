package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mail-hub/internal/domain"
)

const (
	// DefaultMistralBaseURL is the public Mistral API endpoint.
	DefaultMistralBaseURL = "https://api.mistral.ai"
	// DefaultMistralModel is used when no model is configured.
	DefaultMistralModel = "mistral-large-latest"

	analyzeSystemPrompt = "Analyze the incoming email. Classify it, summarize it, and extract any action items. " +
		"Return the result as a JSON object with the keys: 'category' (one of Work, Personal, Finance, Social, " +
		"Promotions, Updates, Spam, Other), 'confidence' (number 0-1), 'summary' (string), and 'actionItems' (array of strings)."
	digestSystemPrompt = "You are an email assistant. Generate a brief, friendly TLDR summary of the user's unread emails. " +
		"Keep it concise (2-4 sentences max). Focus on what's most important or actionable. Use a casual, helpful tone."
)

// MistralGateway implements domain.EmailAnalyzer with the Mistral chat
// completions API.
type MistralGateway struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewMistralGateway creates a new Mistral gateway.
func NewMistralGateway(baseURL, apiKey, model string, timeout time.Duration, logger *slog.Logger) *MistralGateway {
	if baseURL == "" {
		baseURL = DefaultMistralBaseURL
	}
	if model == "" {
		model = DefaultMistralModel
	}
	return &MistralGateway{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze classifies and summarizes one email.
func (g *MistralGateway) Analyze(ctx context.Context, subject, content string) (*domain.Analysis, error) {
	out, err := g.complete(ctx, chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: analyzeSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Subject: %s\n\nBody:\n%s", subject, content)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	var analysis domain.Analysis
	if err := json.Unmarshal([]byte(out), &analysis); err != nil {
		return nil, fmt.Errorf("%w: analysis is not valid JSON: %w", domain.ErrAnalyzerUnavailable, err)
	}
	return &analysis, nil
}

// Digest writes a short TLDR of a list of unread emails.
func (g *MistralGateway) Digest(ctx context.Context, emails []domain.EmailSummary) (string, error) {
	var b strings.Builder
	for i, e := range emails {
		if i > 0 {
			b.WriteString("\n\n")
		}
		summary := e.Summary
		if summary == "" {
			summary = "No summary available"
		}
		fmt.Fprintf(&b, "%d. From: %s\n   Subject: %s\n   Summary: %s", i+1, e.From, e.Subject, summary)
	}

	return g.complete(ctx, chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: digestSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Here are my %d unread emails:\n\n%s\n\nGive me a quick TLDR of what I need to know.", len(emails), b.String())},
		},
	})
}

func (g *MistralGateway) complete(ctx context.Context, payload chatRequest) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("%w: no API key configured", domain.ErrAnalyzerUnavailable)
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrAnalyzerUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrAnalyzerUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrAnalyzerUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			g.logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		g.logger.ErrorContext(ctx, "mistral API returned non-200 status",
			"code", resp.StatusCode,
			"body", string(bodyBytes))
		return "", fmt.Errorf("%w: mistral returned status %d", domain.ErrAnalyzerUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrAnalyzerUnavailable, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrAnalyzerUnavailable)
	}

	content := contentText(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrAnalyzerUnavailable)
	}

	g.logger.DebugContext(ctx, "completion received",
		"model", payload.Model,
		"duration_ms", time.Since(start).Milliseconds(),
		"length", len(content))
	return content, nil
}

// contentText accepts either a plain string or a list of text chunks.
func contentText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var chunks []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &chunks); err != nil {
		return ""
	}
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}
