package domain

// RouteKind enumerates the outcomes of tenant routing.
type RouteKind int

const (
	// RoutePass continues to the requested resource unchanged.
	RoutePass RouteKind = iota
	// RouteRedirect sends the browser to an absolute URL.
	RouteRedirect
	// RouteRewrite serves an internal path while keeping the visible URL.
	RouteRewrite
	// RouteUnauthenticated sends a visitor of a tenant mailbox to the auth page.
	RouteUnauthenticated
)

func (k RouteKind) String() string {
	switch k {
	case RoutePass:
		return "PASS"
	case RouteRedirect:
		return "REDIRECT"
	case RouteRewrite:
		return "REWRITE"
	case RouteUnauthenticated:
		return "UNAUTHENTICATED_REDIRECT"
	default:
		return "UNKNOWN"
	}
}

// RouteRequest is the subset of an inbound request the resolver looks at.
type RouteRequest struct {
	Scheme     string // "http" or "https"; empty means https
	Host       string // raw Host header, may carry a port
	Path       string
	RawQuery   string
	URL        string // full request URL when the framework exposes one
	HasSession bool
}

// RouteDecision is the resolver's verdict for one request.
//
// Target is an absolute URL for RouteRedirect, an internal path for
// RouteRewrite and a path with query for RouteUnauthenticated. Tenant is the
// mailbox label derived from the host, empty when there is none.
type RouteDecision struct {
	Kind   RouteKind
	Target string
	Status int
	Tenant string
}

// Pass is the decision to leave the request alone.
func Pass() RouteDecision {
	return RouteDecision{Kind: RoutePass}
}
