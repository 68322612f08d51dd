package usecase

import (
	"net/http"
	"testing"

	"mail-hub/internal/domain"

	"github.com/stretchr/testify/assert"
)

func newTestResolver(root string) *RouteResolver {
	return NewRouteResolver(RouterConfig{RootDomain: root})
}

func TestRouteResolver_ApexRedirect(t *testing.T) {
	r := newTestResolver("example.com")

	tests := []struct {
		name   string
		req    domain.RouteRequest
		target string
	}{
		{
			name:   "bare apex",
			req:    domain.RouteRequest{Host: "example.com", Path: "/pricing"},
			target: "https://www.example.com/pricing",
		},
		{
			name:   "query preserved",
			req:    domain.RouteRequest{Host: "example.com", Path: "/pricing", RawQuery: "plan=pro&ref=x"},
			target: "https://www.example.com/pricing?plan=pro&ref=x",
		},
		{
			name:   "mixed case and trailing dot",
			req:    domain.RouteRequest{Host: "Example.COM.", Path: "/"},
			target: "https://www.example.com/",
		},
		{
			name:   "port kept on redirect",
			req:    domain.RouteRequest{Scheme: "http", Host: "example.com:8080", Path: "/about"},
			target: "http://www.example.com:8080/about",
		},
		{
			name:   "session does not matter",
			req:    domain.RouteRequest{Host: "example.com", Path: "/", HasSession: true},
			target: "https://www.example.com/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.req)
			assert.Equal(t, domain.RouteRedirect, got.Kind)
			assert.Equal(t, http.StatusMovedPermanently, got.Status)
			assert.Equal(t, tt.target, got.Target)
			assert.Empty(t, got.Tenant)
		})
	}
}

func TestRouteResolver_RootSitePasses(t *testing.T) {
	r := newTestResolver("example.com")

	for _, host := range []string{"www.example.com", "WWW.example.com:443", "www.example.com."} {
		for _, path := range []string{"/", "/pricing", "/auth", "/inbox"} {
			got := r.Resolve(domain.RouteRequest{Host: host, Path: path})
			assert.Equal(t, domain.RoutePass, got.Kind, "host=%s path=%s", host, path)
			assert.Empty(t, got.Tenant)
		}
	}
}

func TestRouteResolver_RootDomainWithPort(t *testing.T) {
	r := newTestResolver("localhost:3000")

	got := r.Resolve(domain.RouteRequest{Scheme: "http", Host: "localhost:3000", Path: "/"})
	assert.Equal(t, domain.RouteRedirect, got.Kind)
	assert.Equal(t, "http://www.localhost:3000/", got.Target)

	got = r.Resolve(domain.RouteRequest{Scheme: "http", Host: "www.localhost:3000", Path: "/"})
	assert.Equal(t, domain.RoutePass, got.Kind)
}

func TestRouteResolver_TenantWithoutSession(t *testing.T) {
	r := newTestResolver("example.com")

	got := r.Resolve(domain.RouteRequest{Host: "alice.example.com", Path: "/inbox"})
	assert.Equal(t, domain.RouteUnauthenticated, got.Kind)
	assert.Equal(t, "/auth?subdomain=alice", got.Target)
	assert.Equal(t, http.StatusTemporaryRedirect, got.Status)
	assert.Equal(t, "alice", got.Tenant)

	got = r.Resolve(domain.RouteRequest{Host: "alice.example.com", Path: "/settings", RawQuery: "tab=theme"})
	assert.Equal(t, domain.RouteUnauthenticated, got.Kind)
	assert.Equal(t, "/auth?subdomain=alice&tab=theme", got.Target)

	got = r.Resolve(domain.RouteRequest{Host: "alice.example.com", Path: "/", RawQuery: "subdomain=mallory"})
	assert.Equal(t, "/auth?subdomain=alice", got.Target)
}

func TestRouteResolver_UnauthenticatedKeepsDecodableQuery(t *testing.T) {
	r := newTestResolver("example.com")

	got := r.Resolve(domain.RouteRequest{Host: "alice.example.com", Path: "/inbox", RawQuery: "tab=theme&q=100%"})
	assert.Equal(t, domain.RouteUnauthenticated, got.Kind)
	assert.Equal(t, "/auth?subdomain=alice&tab=theme", got.Target)

	got = r.Resolve(domain.RouteRequest{Host: "alice.example.com", Path: "/", RawQuery: "%zz&ref=mail"})
	assert.Equal(t, "/auth?ref=mail&subdomain=alice", got.Target)
}

func TestRouteResolver_AuthPathsPass(t *testing.T) {
	r := newTestResolver("example.com")

	for _, path := range []string{"/auth", "/auth/login", "/auth/register"} {
		got := r.Resolve(domain.RouteRequest{Host: "alice.example.com", Path: path})
		assert.Equal(t, domain.RoutePass, got.Kind, path)
		assert.Equal(t, "alice", got.Tenant)
	}

	got := r.Resolve(domain.RouteRequest{Host: "alice.example.com", Path: "/authors"})
	assert.Equal(t, domain.RouteUnauthenticated, got.Kind)
}

func TestRouteResolver_RewritesWithSession(t *testing.T) {
	r := newTestResolver("example.com")

	tests := []struct {
		path   string
		kind   domain.RouteKind
		target string
	}{
		{"/", domain.RouteRewrite, "/s/alice/inbox"},
		{"", domain.RouteRewrite, "/s/alice/inbox"},
		{"/inbox", domain.RouteRewrite, "/s/alice/inbox"},
		{"/sent", domain.RouteRewrite, "/s/alice/sent"},
		{"/settings", domain.RoutePass, ""},
		{"/s/alice/inbox", domain.RoutePass, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := r.Resolve(domain.RouteRequest{Host: "alice.example.com", Path: tt.path, HasSession: true})
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.target, got.Target)
			assert.Equal(t, "alice", got.Tenant)
		})
	}
}

func TestRouteResolver_LocalDevelopment(t *testing.T) {
	r := newTestResolver("localhost:3000")

	got := r.Resolve(domain.RouteRequest{Host: "bob.localhost:3000", Path: "/inbox", HasSession: true})
	assert.Equal(t, domain.RouteRewrite, got.Kind)
	assert.Equal(t, "/s/bob/inbox", got.Target)

	got = r.Resolve(domain.RouteRequest{Host: "bob.localhost:3000", Path: "/inbox"})
	assert.Equal(t, domain.RouteUnauthenticated, got.Kind)
	assert.Equal(t, "/auth?subdomain=bob", got.Target)
}

func TestRouteResolver_LocalhostURLPattern(t *testing.T) {
	r := newTestResolver("example.com")

	got := r.Resolve(domain.RouteRequest{
		Host:       "127.0.0.1:3000",
		URL:        "http://carol.localhost:3000/sent",
		Path:       "/sent",
		HasSession: true,
	})
	assert.Equal(t, domain.RouteRewrite, got.Kind)
	assert.Equal(t, "/s/carol/sent", got.Target)
}

func TestRouteResolver_PreviewDeployment(t *testing.T) {
	r := newTestResolver("example.com")

	got := r.Resolve(domain.RouteRequest{Host: "dave---mail-git-main.vercel.app", Path: "/", HasSession: true})
	assert.Equal(t, domain.RouteRewrite, got.Kind)
	assert.Equal(t, "/s/dave/inbox", got.Target)

	got = r.Resolve(domain.RouteRequest{Host: "mail-git-main.vercel.app", Path: "/"})
	assert.Equal(t, domain.RoutePass, got.Kind)
}

func TestRouteResolver_MalformedHostsPass(t *testing.T) {
	r := newTestResolver("example.com")

	for _, host := range []string{
		"",
		"   ",
		".example.com",
		"a..example.com",
		"evil/.example.com",
		"user@alice.example.com",
		"al ice.example.com",
		"[::1]:3000",
		"example.com:1:2",
		"other.org",
		"www.localhost",
	} {
		got := r.Resolve(domain.RouteRequest{Host: host, Path: "/inbox"})
		assert.Equal(t, domain.RoutePass, got.Kind, "host=%q", host)
	}
}

func TestRouteResolver_MultipleRootDomains(t *testing.T) {
	a := newTestResolver("example.com")
	b := newTestResolver("mail.test")

	req := domain.RouteRequest{Host: "erin.mail.test", Path: "/"}
	assert.Equal(t, domain.RoutePass, a.Resolve(req).Kind)
	assert.Equal(t, domain.RouteUnauthenticated, b.Resolve(req).Kind)
}

func TestRouteResolver_CustomConfig(t *testing.T) {
	r := NewRouteResolver(RouterConfig{
		RootDomain:    "Example.com:443",
		AuthPath:      "/login",
		RewritePrefix: "/mailbox/",
		Aliases:       map[string]string{"/starred": "starred"},
	})

	assert.Equal(t, "example.com", r.RootDomain())

	got := r.Resolve(domain.RouteRequest{Host: "frank.example.com", Path: "/starred", HasSession: true})
	assert.Equal(t, domain.RouteRewrite, got.Kind)
	assert.Equal(t, "/mailbox/frank/starred", got.Target)

	got = r.Resolve(domain.RouteRequest{Host: "frank.example.com", Path: "/"})
	assert.Equal(t, "/login?subdomain=frank", got.Target)

	got = r.Resolve(domain.RouteRequest{Host: "frank.example.com", Path: "/login"})
	assert.Equal(t, domain.RoutePass, got.Kind)
}

func TestRouteKind_String(t *testing.T) {
	assert.Equal(t, "PASS", domain.RoutePass.String())
	assert.Equal(t, "REDIRECT", domain.RouteRedirect.String())
	assert.Equal(t, "REWRITE", domain.RouteRewrite.String())
	assert.Equal(t, "UNAUTHENTICATED_REDIRECT", domain.RouteUnauthenticated.String())
}
