package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans inbound email HTML before it is stored.
// Implements domain.HTMLSanitizer.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a Sanitizer that keeps the formatting mail clients
// use (tables, inline styles, images) and drops scripts, handlers and forms.
func NewSanitizer() *Sanitizer {
	p := bluemonday.UGCPolicy()

	// Newsletters lay out with tables and inline styles.
	p.AllowStyles("color", "background-color", "font-family", "font-size", "font-weight", "font-style",
		"text-align", "text-decoration", "line-height", "padding", "margin", "border", "width", "height").Globally()
	p.AllowAttrs("align", "valign", "bgcolor", "width", "height", "border", "cellpadding", "cellspacing").
		OnElements("table", "tr", "td", "th", "tbody", "thead", "tfoot", "img", "div", "p")
	p.AllowElements("center", "font", "span")
	p.AllowAttrs("color", "face", "size").OnElements("font")
	p.AllowURLSchemes("http", "https", "mailto", "cid", "data")
	p.AllowDataURIImages()

	// Enforce nofollow and target=_blank on links
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &Sanitizer{policy: p}
}

// Sanitize returns html with unsafe markup removed.
func (s *Sanitizer) Sanitize(html string) string {
	return strings.TrimSpace(s.policy.Sanitize(html))
}
