package main

import (
	"log/slog"

	adapterhandler "mail-hub/internal/adapter/handler"
	"mail-hub/internal/domain"
	infracache "mail-hub/internal/infrastructure/cache"
	"mail-hub/internal/infrastructure/sanitize"
	"mail-hub/internal/infrastructure/validation"
	"mail-hub/internal/usecase"

	"mail-hub/config"
	appmiddleware "mail-hub/middleware"
	"mail-hub/utils/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

// ports are the outbound dependencies of the edge server.
type ports struct {
	sessions domain.SessionValidator
	users    domain.UserRepository
	emails   domain.EmailRepository
	sender   domain.MailSender
	fetcher  domain.InboundFetcher
	analyzer domain.EmailAnalyzer
	tokens   domain.TokenIssuer
	db       adapterhandler.Pinger
}

// serverOptions carry settings that do not come from config.Config.
type serverOptions struct {
	otelEnabled bool
	serviceName string
}

// newServer wires usecases, handlers and middleware into an echo instance.
// The returned func stops the rate limiters' cleanup goroutines.
func newServer(cfg *config.Config, p ports, opts serverOptions, log *slog.Logger) (*echo.Echo, func()) {
	cookies := cfg.SessionCookies
	if len(cookies) == 0 {
		cookies = appmiddleware.DefaultSessionCookies
	}

	// Usecases
	resolver := usecase.NewRouteResolver(usecase.RouterConfig{
		RootDomain:    cfg.RootDomain,
		AuthPath:      cfg.AuthPath,
		PreviewSuffix: cfg.PreviewSuffix,
	})
	sessionCache := infracache.NewSessionCache(cfg.SessionCacheSize, cfg.SessionCacheTTL)
	validateUC := usecase.NewValidateSession(p.sessions, sessionCache, log)
	sessionUC := usecase.NewGetSession(validateUC, p.tokens, cfg.RootDomain, log)
	listUC := usecase.NewListEmails(p.emails, log)
	getUC := usecase.NewGetEmail(p.emails, log)
	searchUC := usecase.NewSearchEmails(p.emails, log)
	sendUC := usecase.NewSendEmail(p.sender, p.emails, log)
	usersUC := usecase.NewLookupUsers(p.users, log)
	tldrUC := usecase.NewGenerateTLDR(p.emails, p.analyzer, log)
	ingestUC := usecase.NewIngestEmail(p.fetcher, p.users, p.emails, p.analyzer, sanitize.NewSanitizer(), log)

	// Handlers
	emailHandler := adapterhandler.NewEmailHandler(listUC, getUC, searchUC)
	sendHandler := adapterhandler.NewSendHandler(sendUC)
	usersHandler := adapterhandler.NewUsersHandler(usersUC)
	tldrHandler := adapterhandler.NewTLDRHandler(tldrUC)
	portalHandler := adapterhandler.NewPortalHandler(ingestUC, log)
	sessionHandler := adapterhandler.NewSessionHandler(sessionUC, cookies)
	validateHandler := adapterhandler.NewValidateHandler(validateUC, cookies)
	switchHandler := adapterhandler.NewSwitchHandler(cfg.RootDomain)
	healthHandler := adapterhandler.NewHealthHandler(p.db, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()

	// Host-based routing runs before the router so rewrites are matched.
	e.Pre(appmiddleware.TenantRouter(appmiddleware.TenantRouterConfig{
		Resolver:       resolver,
		SessionCookies: cookies,
		Logger:         log,
	}))

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			c.SetRequest(c.Request().WithContext(logger.WithRequestID(c.Request().Context(), id)))
		},
	}))
	e.Use(appmiddleware.SecurityHeaders())

	if opts.otelEnabled {
		e.Use(otelecho.Middleware(opts.serviceName))
		e.Use(appmiddleware.OTelStatusMiddleware())
	}

	// Request logging
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogHost:     true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			reqLog := logger.GlobalContext.Logger()
			if v.Error == nil {
				reqLog.InfoContext(rctx, "request completed",
					"method", v.Method,
					"host", v.Host,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				reqLog.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"host", v.Host,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	// Rate limiters per endpoint group
	validateRL := appmiddleware.NewRateLimiter(100.0/60.0, 10) // 100 req/min
	sessionRL := appmiddleware.NewRateLimiter(30.0/60.0, 5)    // 30 req/min
	portalRL := appmiddleware.NewRateLimiter(60.0/60.0, 20)    // 60 req/min
	sendRL := appmiddleware.NewKeyedRateLimiter(appmiddleware.RateLimitConfig{
		Rate:  10.0 / 60.0, // 10 messages/min per mailbox
		Burst: 3,
	}, appmiddleware.ByMailbox)

	requireSession := appmiddleware.RequireSession(appmiddleware.RequireSessionConfig{
		Sessions:       validateUC,
		Tokens:         p.tokens,
		SessionCookies: cookies,
		Logger:         log,
	})

	// Public routes
	e.GET("/health", healthHandler.Handle)
	e.GET("/validate", validateHandler.Handle, validateRL.Middleware())
	e.GET("/switch", switchHandler.Handle)

	// Rewrite target of mailbox hosts
	e.GET("/s/:subdomain/:folder", emailHandler.Folder, requireSession)

	api := e.Group("/api")
	api.GET("/session", sessionHandler.Handle, sessionRL.Middleware())
	api.POST("/portal", portalHandler.Handle,
		portalRL.Middleware(),
		appmiddleware.SharedSecret(appmiddleware.WebhookSecretHeader, cfg.PortalWebhookSecret),
	)

	// Mailbox API (session required, trusted origins for writes)
	mailbox := api.Group("",
		appmiddleware.TrustedOrigins(cfg.RootDomain),
		requireSession,
	)
	mailbox.GET("/emails", emailHandler.Inbox)
	mailbox.GET("/emails/:id", emailHandler.Get)
	mailbox.GET("/sent", emailHandler.Sent)
	mailbox.GET("/search", emailHandler.Search)
	mailbox.GET("/users", usersHandler.Handle)
	mailbox.GET("/tldr", tldrHandler.Handle)
	mailbox.POST("/send", sendHandler.Handle, sendRL.Middleware())

	if cfg.StaticDir != "" {
		e.Static("/", cfg.StaticDir)
	}

	stop := func() {
		validateRL.Stop()
		sessionRL.Stop()
		portalRL.Stop()
		sendRL.Stop()
	}
	return e, stop
}
