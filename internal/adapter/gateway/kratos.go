package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mail-hub/internal/domain"

	kratos "github.com/ory/kratos-client-go"
)

// DefaultKratosCookie is the cookie Kratos issues for browser sessions.
const DefaultKratosCookie = "ory_kratos_session"

// KratosGateway implements domain.SessionValidator and domain.UserRepository
// on top of an Ory Kratos deployment.
type KratosGateway struct {
	client       *kratos.APIClient
	adminBaseURL string
	cookieName   string
	httpClient   *http.Client
}

// NewKratosGateway creates a new Kratos gateway with tuned HTTP transport.
func NewKratosGateway(baseURL, adminBaseURL string, timeout time.Duration) *KratosGateway {
	configuration := kratos.NewConfiguration()
	configuration.Servers = []kratos.ServerConfiguration{
		{URL: baseURL},
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
	configuration.HTTPClient = httpClient

	return &KratosGateway{
		client:       kratos.NewAPIClient(configuration),
		adminBaseURL: strings.TrimSuffix(adminBaseURL, "/"),
		cookieName:   DefaultKratosCookie,
		httpClient:   httpClient,
	}
}

// ValidateSession validates a session token and returns the identity.
func (g *KratosGateway) ValidateSession(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	cookie := g.cookieName + "=" + token
	session, resp, err := g.client.FrontendAPI.ToSession(ctx).Cookie(cookie).Execute()
	if err != nil {
		if resp != nil {
			if resp.StatusCode == http.StatusUnauthorized {
				return nil, domain.ErrAuthFailed
			}
			return nil, fmt.Errorf("%w: kratos returned status %d", domain.ErrKratosUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrKratosUnavailable, err)
	}

	if session.Active != nil && !*session.Active {
		return nil, domain.ErrSessionInactive
	}

	if session.Identity == nil {
		return nil, domain.ErrMissingIdentity
	}

	user := userFromTraits(session.Identity.Traits)
	if user.Email == "" {
		return nil, domain.ErrMissingIdentity
	}

	var createdAt time.Time
	if session.Identity.CreatedAt != nil {
		createdAt = *session.Identity.CreatedAt
	}
	var expiresAt time.Time
	if session.ExpiresAt != nil {
		expiresAt = *session.ExpiresAt
	}

	return &domain.Identity{
		UserID:    session.Identity.Id,
		Email:     user.Email,
		Name:      user.Name,
		Image:     user.Image,
		SessionID: session.Id,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// adminIdentity represents a Kratos identity from Admin API.
type adminIdentity struct {
	ID     string         `json:"id"`
	State  string         `json:"state"`
	Traits map[string]any `json:"traits"`
}

// FindByEmail looks up the identity registered with email through the
// Admin API.
func (g *KratosGateway) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if g.adminBaseURL == "" {
		return nil, fmt.Errorf("%w: admin API not configured", domain.ErrKratosUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/admin/identities?page_size=1&credentials_identifier=%s",
		g.adminBaseURL, url.QueryEscape(strings.ToLower(email)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrKratosUnavailable, err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrKratosUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: admin API returned status %d", domain.ErrKratosUnavailable, resp.StatusCode)
	}

	var identities []adminIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identities); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrKratosUnavailable, err)
	}

	if len(identities) == 0 || identities[0].State == "inactive" {
		return nil, domain.ErrRecipientNotFound
	}

	user := userFromTraits(identities[0].Traits)
	user.ID = identities[0].ID
	return &user, nil
}

// FindByEmails looks up each address in turn, skipping unknown ones.
func (g *KratosGateway) FindByEmails(ctx context.Context, emails []string) ([]domain.User, error) {
	users := make([]domain.User, 0, len(emails))
	for _, email := range emails {
		user, err := g.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, domain.ErrRecipientNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

func userFromTraits(traits any) domain.User {
	m, ok := traits.(map[string]any)
	if !ok {
		return domain.User{}
	}
	var user domain.User
	if email, ok := m["email"].(string); ok {
		user.Email = email
	}
	switch name := m["name"].(type) {
	case string:
		user.Name = name
	case map[string]any:
		first, _ := name["first"].(string)
		last, _ := name["last"].(string)
		user.Name = strings.TrimSpace(first + " " + last)
	}
	if picture, ok := m["picture"].(string); ok {
		user.Image = picture
	}
	return user
}
