package cli

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"mail-hub/internal/domain"
	"mail-hub/internal/usecase"
)

type routeOptions struct {
	host    string
	path    string
	query   string
	scheme  string
	url     string
	session bool
	json    bool
}

func newRouteCommand(a *app) *cobra.Command {
	var opts routeOptions
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Show how the edge server routes a request",
		Long: `Run the tenant resolver against a host and path and print the decision.

  mailctl route --host example.com --path /pricing
  mailctl route --host alice.example.com --path / --session`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRoute(opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.host, "host", "", "request Host header")
	f.StringVar(&opts.path, "path", "/", "request path")
	f.StringVar(&opts.query, "query", "", "raw query string without '?'")
	f.StringVar(&opts.scheme, "scheme", "https", "request scheme")
	f.StringVar(&opts.url, "url", "", "full request URL, for localhost development hosts")
	f.BoolVar(&opts.session, "session", false, "request carries a session cookie")
	f.BoolVar(&opts.json, "json", false, "output as JSON")
	_ = cmd.MarkFlagRequired("host")
	return cmd
}

func (a *app) runRoute(opts routeOptions) error {
	resolver := usecase.NewRouteResolver(usecase.RouterConfig{RootDomain: a.cfg.RootDomain})
	decision := resolver.Resolve(domain.RouteRequest{
		Scheme:     opts.scheme,
		Host:       opts.host,
		Path:       opts.path,
		RawQuery:   opts.query,
		URL:        opts.url,
		HasSession: opts.session,
	})
	a.logger.Debug("route resolved", "host", opts.host, "path", opts.path, "kind", decision.Kind.String())

	if opts.json {
		enc := json.NewEncoder(a.printer.Out())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"kind":   decision.Kind.String(),
			"target": decision.Target,
			"status": decision.Status,
			"tenant": decision.Tenant,
		})
	}

	p := a.printer
	p.Print("decision: %s", p.KindBadge(decision.Kind))
	if decision.Target != "" {
		p.Print("target:   %s", p.Bold(decision.Target))
	}
	if decision.Status != 0 {
		p.Print("status:   %s", strconv.Itoa(decision.Status))
	}
	if decision.Tenant != "" {
		p.Print("tenant:   %s", decision.Tenant)
	}
	return nil
}
