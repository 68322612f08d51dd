package usecase

import (
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"mail-hub/internal/domain"
)

// Defaults for RouterConfig.
const (
	DefaultAuthPath      = "/auth"
	DefaultRewritePrefix = "/s"
	DefaultPreviewSep    = "---"
	DefaultPreviewSuffix = ".vercel.app"
)

// RouterConfig configures a RouteResolver.
type RouterConfig struct {
	RootDomain    string
	AuthPath      string
	RewritePrefix string
	// Aliases maps shorthand paths to the mailbox folder they are served from.
	Aliases       map[string]string
	PreviewSep    string
	PreviewSuffix string
}

// DefaultAliases returns the shorthand paths rewritten into a mailbox.
func DefaultAliases() map[string]string {
	return map[string]string{
		"/":      "inbox",
		"/inbox": "inbox",
		"/sent":  "sent",
	}
}

var localhostURLPattern = regexp.MustCompile(`^http://([^./]+)\.localhost(?::\d+)?(?:/|$)`)

// RouteResolver maps a request's host, path and session presence to a
// routing decision. It holds no mutable state and is safe for concurrent use.
type RouteResolver struct {
	root          string
	authPath      string
	rewritePrefix string
	aliases       map[string]string
	previewSep    string
	previewSuffix string
}

// NewRouteResolver creates a resolver for one root domain.
func NewRouteResolver(cfg RouterConfig) *RouteResolver {
	r := &RouteResolver{
		root:          normalizeHost(cfg.RootDomain),
		authPath:      cfg.AuthPath,
		rewritePrefix: strings.TrimSuffix(cfg.RewritePrefix, "/"),
		previewSep:    cfg.PreviewSep,
		previewSuffix: strings.ToLower(cfg.PreviewSuffix),
	}
	if r.authPath == "" {
		r.authPath = DefaultAuthPath
	}
	if r.rewritePrefix == "" {
		r.rewritePrefix = DefaultRewritePrefix
	}
	if r.previewSep == "" {
		r.previewSep = DefaultPreviewSep
	}
	if r.previewSuffix == "" {
		r.previewSuffix = DefaultPreviewSuffix
	}

	aliases := cfg.Aliases
	if aliases == nil {
		aliases = DefaultAliases()
	}
	r.aliases = make(map[string]string, len(aliases))
	for path, folder := range aliases {
		r.aliases[path] = folder
	}
	return r
}

// RootDomain returns the normalized root domain the resolver was built for.
func (r *RouteResolver) RootDomain() string {
	return r.root
}

// Resolve decides where the request should go.
func (r *RouteResolver) Resolve(req domain.RouteRequest) domain.RouteDecision {
	host := normalizeHost(req.Host)
	if host == "" {
		return domain.Pass()
	}

	if r.root != "" && host == r.root && !strings.HasPrefix(host, "www.") {
		return domain.RouteDecision{
			Kind:   domain.RouteRedirect,
			Target: r.apexRedirect(req),
			Status: http.StatusMovedPermanently,
		}
	}

	tenant := r.ExtractTenant(host, req.URL)
	if tenant == "" {
		return domain.Pass()
	}

	path := req.Path
	if path == "" {
		path = "/"
	}

	if path == r.authPath || strings.HasPrefix(path, r.authPath+"/") {
		return domain.RouteDecision{Kind: domain.RoutePass, Tenant: tenant}
	}

	if !req.HasSession {
		return domain.RouteDecision{
			Kind:   domain.RouteUnauthenticated,
			Target: r.authRedirect(tenant, req.RawQuery),
			Status: http.StatusTemporaryRedirect,
			Tenant: tenant,
		}
	}

	if folder, ok := r.aliases[path]; ok {
		return domain.RouteDecision{
			Kind:   domain.RouteRewrite,
			Target: r.rewritePrefix + "/" + tenant + "/" + folder,
			Tenant: tenant,
		}
	}

	return domain.RouteDecision{Kind: domain.RoutePass, Tenant: tenant}
}

// ExtractTenant returns the mailbox label encoded in host, or "" when the
// host belongs to the root site. host must already be normalized; rawURL is
// optional.
func (r *RouteResolver) ExtractTenant(host, rawURL string) string {
	if m := localhostURLPattern.FindStringSubmatch(strings.ToLower(rawURL)); m != nil {
		return validTenant(m[1])
	}

	if label, ok := strings.CutSuffix(host, ".localhost"); ok {
		first, _, _ := strings.Cut(label, ".")
		return validTenant(first)
	}

	if strings.HasSuffix(host, r.previewSuffix) {
		if token, _, ok := strings.Cut(host, r.previewSep); ok {
			return validTenant(token)
		}
	}

	if r.root == "" || host == r.root || host == "www."+r.root {
		return ""
	}
	if token, ok := strings.CutSuffix(host, "."+r.root); ok {
		return validTenant(token)
	}
	return ""
}

func (r *RouteResolver) apexRedirect(req domain.RouteRequest) string {
	scheme := req.Scheme
	if scheme == "" {
		scheme = "https"
	}
	path := req.Path
	if path == "" {
		path = "/"
	}
	host := "www." + normalizeHost(req.Host)
	if _, port, err := net.SplitHostPort(strings.TrimSpace(req.Host)); err == nil && port != "" {
		host = net.JoinHostPort(host, port)
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     path,
		RawQuery: req.RawQuery,
	}
	return u.String()
}

func (r *RouteResolver) authRedirect(tenant, rawQuery string) string {
	// ParseQuery keeps every pair it could decode alongside the error.
	q, _ := url.ParseQuery(rawQuery)
	q.Set("subdomain", tenant)
	return r.authPath + "?" + q.Encode()
}

// normalizeHost lower-cases host, drops the port and any trailing dot.
// Anything that does not look like a host name comes back empty.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	} else if strings.HasPrefix(host, "[") {
		host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	}
	host = strings.TrimSuffix(host, ".")
	if strings.ContainsAny(host, "/?#@ \t") {
		return ""
	}
	return host
}

// validTenant rejects "www", tokens with empty labels and characters that
// cannot appear in a host label.
func validTenant(token string) string {
	if token == "" || token == "www" {
		return ""
	}
	for _, label := range strings.Split(token, ".") {
		if label == "" {
			return ""
		}
	}
	for _, c := range token {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return ""
		}
	}
	return token
}
