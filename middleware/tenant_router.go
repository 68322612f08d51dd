package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"mail-hub/internal/domain"
)

// RouteResolver decides how a request is routed by host.
type RouteResolver interface {
	Resolve(req domain.RouteRequest) domain.RouteDecision
}

// TenantRouterConfig configures TenantRouter.
type TenantRouterConfig struct {
	Resolver       RouteResolver
	SessionCookies []string
	// Skipper excludes requests from routing; defaults to DefaultRouteSkipper.
	Skipper func(c echo.Context) bool
	Logger  *slog.Logger
}

const tenantKey = "mailhub.tenant"

// DefaultRouteSkipper skips API routes, static assets and the health check.
func DefaultRouteSkipper(c echo.Context) bool {
	path := c.Request().URL.Path
	switch {
	case path == "/api" || strings.HasPrefix(path, "/api/"):
		return true
	case strings.HasPrefix(path, "/static/"), strings.HasPrefix(path, "/_next/static/"), strings.HasPrefix(path, "/_next/image"):
		return true
	case path == "/health", path == "/favicon.ico", strings.HasSuffix(path, ".svg"):
		return true
	}
	return false
}

// TenantRouter runs the host-based route resolver in front of the router.
// It must be registered with echo.Pre so that rewrites reach the rewritten
// route.
func TenantRouter(cfg TenantRouterConfig) echo.MiddlewareFunc {
	cookies := cfg.SessionCookies
	if len(cookies) == 0 {
		cookies = DefaultSessionCookies
	}
	skipper := cfg.Skipper
	if skipper == nil {
		skipper = DefaultRouteSkipper
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}

			req := c.Request()
			scheme := c.Scheme()
			decision := cfg.Resolver.Resolve(domain.RouteRequest{
				Scheme:     scheme,
				Host:       req.Host,
				Path:       req.URL.Path,
				RawQuery:   req.URL.RawQuery,
				URL:        scheme + "://" + req.Host + req.URL.RequestURI(),
				HasSession: SessionToken(req, cookies) != "",
			})

			if decision.Tenant != "" {
				c.Set(tenantKey, decision.Tenant)
			}

			switch decision.Kind {
			case domain.RouteRedirect, domain.RouteUnauthenticated:
				logger.DebugContext(req.Context(), "tenant redirect",
					"kind", decision.Kind.String(),
					"host", req.Host,
					"target", decision.Target)
				status := decision.Status
				if status == 0 {
					status = http.StatusTemporaryRedirect
				}
				return c.Redirect(status, decision.Target)
			case domain.RouteRewrite:
				logger.DebugContext(req.Context(), "tenant rewrite",
					"host", req.Host,
					"from", req.URL.Path,
					"to", decision.Target)
				req.URL.Path = decision.Target
				req.URL.RawPath = ""
			}
			return next(c)
		}
	}
}

// TenantFrom returns the mailbox label the router extracted from the host.
func TenantFrom(c echo.Context) string {
	tenant, _ := c.Get(tenantKey).(string)
	return tenant
}
