package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session providers.
const (
	ProviderPostgres = "postgres"
	ProviderKratos   = "kratos"
)

// minTokenSecret mirrors token.MinSecretLength so a weak secret fails at
// startup instead of on the first /api/session call.
const minTokenSecret = 32

// Config holds the application configuration
type Config struct {
	Port          string // Service port
	RootDomain    string // Apex the mailbox subdomains hang off
	AuthPath      string // Sign-in entry path on tenant hosts
	PreviewSuffix string // Host suffix of preview deployments
	StaticDir     string // Optional directory served for non-API paths

	DatabaseURL      string
	SessionProvider  string   // "postgres" or "kratos"
	SessionSecret    string   // Signing secret of session cookies; empty skips the signature check
	SessionCookies   []string // Cookie names that carry a session
	SessionCacheTTL  time.Duration
	SessionCacheSize int
	KratosURL        string // Kratos Frontend API
	KratosAdminURL   string // Kratos Admin API

	MailboxTokenSecret   string
	MailboxTokenIssuer   string
	MailboxTokenAudience string
	MailboxTokenTTL      time.Duration

	ResendAPIKey   string
	ResendBaseURL  string
	MistralAPIKey  string
	MistralBaseURL string
	MistralModel   string

	PortalWebhookSecret string // Shared secret on POST /api/portal; empty disables the check
}

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none)
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	config := &Config{
		Port:                 getEnv("PORT", "8080"),
		RootDomain:           getEnv("ROOT_DOMAIN", getEnv("NEXT_PUBLIC_ROOT_DOMAIN", "localhost:3000")),
		AuthPath:             getEnv("AUTH_PATH", "/auth"),
		PreviewSuffix:        getEnv("PREVIEW_SUFFIX", ".vercel.app"),
		StaticDir:            getEnv("STATIC_DIR", ""),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		SessionProvider:      strings.ToLower(getEnv("SESSION_PROVIDER", ProviderPostgres)),
		SessionSecret:        getEnv("BETTER_AUTH_SECRET", ""),
		SessionCookies:       splitList(getEnv("SESSION_COOKIE_NAMES", "")),
		SessionCacheTTL:      5 * time.Minute,
		SessionCacheSize:     10000,
		KratosURL:            getEnv("KRATOS_URL", "http://kratos:4433"),
		KratosAdminURL:       getEnv("KRATOS_ADMIN_URL", "http://kratos:4434"),
		MailboxTokenSecret:   getEnv("MAILBOX_TOKEN_SECRET", ""),
		MailboxTokenIssuer:   getEnv("MAILBOX_TOKEN_ISSUER", "mail-hub"),
		MailboxTokenAudience: getEnv("MAILBOX_TOKEN_AUDIENCE", "mail-hub-api"),
		MailboxTokenTTL:      15 * time.Minute,
		ResendAPIKey:         getEnv("RESEND_API_KEY", ""),
		ResendBaseURL:        getEnv("RESEND_BASE_URL", "https://api.resend.com"),
		MistralAPIKey:        getEnv("MISTRAL_API_KEY", ""),
		MistralBaseURL:       getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai"),
		MistralModel:         getEnv("MISTRAL_MODEL", "mistral-large-latest"),
		PortalWebhookSecret:  getEnv("PORTAL_WEBHOOK_SECRET", ""),
	}

	var err error
	if config.SessionCacheTTL, err = getDuration("SESSION_CACHE_TTL", config.SessionCacheTTL); err != nil {
		return nil, err
	}
	if config.MailboxTokenTTL, err = getDuration("MAILBOX_TOKEN_TTL", config.MailboxTokenTTL); err != nil {
		return nil, err
	}
	if s := os.Getenv("SESSION_CACHE_SIZE"); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_CACHE_SIZE: %w", err)
		}
		config.SessionCacheSize = size
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.RootDomain == "" {
		return fmt.Errorf("ROOT_DOMAIN cannot be empty")
	}
	if !strings.HasPrefix(c.AuthPath, "/") {
		return fmt.Errorf("AUTH_PATH must start with /")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL cannot be empty")
	}

	switch c.SessionProvider {
	case ProviderPostgres:
	case ProviderKratos:
		if c.KratosURL == "" {
			return fmt.Errorf("KRATOS_URL cannot be empty when SESSION_PROVIDER=kratos")
		}
	default:
		return fmt.Errorf("SESSION_PROVIDER must be %q or %q, got %q", ProviderPostgres, ProviderKratos, c.SessionProvider)
	}

	if c.SessionCacheTTL <= 0 {
		return fmt.Errorf("SESSION_CACHE_TTL must be positive")
	}
	if len(c.MailboxTokenSecret) < minTokenSecret {
		return fmt.Errorf("MAILBOX_TOKEN_SECRET must be at least %d characters", minTokenSecret)
	}
	if c.MailboxTokenTTL <= 0 {
		return fmt.Errorf("MAILBOX_TOKEN_TTL must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
