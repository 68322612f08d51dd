package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"mail-hub/internal/usecase"
)

// TrustedOrigins rejects state-changing browser requests whose Origin is not
// the root site or one of its mailbox subdomains. Requests authenticated
// with a bearer token carry no ambient credentials and are let through.
func TrustedOrigins(rootDomain string) echo.MiddlewareFunc {
	root := usecase.SiteRoot(rootDomain)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			origin := req.Header.Get(echo.HeaderOrigin)
			if origin == "" {
				if ref, err := url.Parse(req.Referer()); err == nil && ref.Host != "" {
					origin = ref.Scheme + "://" + ref.Host
				}
			}
			if origin == "" {
				if bearerToken(req) != "" {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusForbidden, "missing origin")
			}
			if !IsTrustedOrigin(origin, root) {
				return echo.NewHTTPError(http.StatusForbidden, "untrusted origin")
			}
			return next(c)
		}
	}
}

// IsTrustedOrigin reports whether origin is http(s)://<root> or
// https://<subdomain>.<root>. Subdomains of a localhost root may use http.
func IsTrustedOrigin(origin, root string) bool {
	u, err := url.Parse(strings.ToLower(origin))
	if err != nil || u.Host == "" || root == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == root {
		return true
	}
	sub, ok := strings.CutSuffix(u.Host, "."+root)
	if !ok || sub == "" || strings.HasPrefix(sub, ".") {
		return false
	}
	if u.Scheme == "https" {
		return true
	}
	return strings.HasPrefix(root, "localhost")
}
