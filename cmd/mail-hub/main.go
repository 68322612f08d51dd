package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mail-hub/internal/adapter/gateway"
	"mail-hub/internal/domain"
	"mail-hub/internal/infrastructure/avatar"
	"mail-hub/internal/infrastructure/postgres"
	infratoken "mail-hub/internal/infrastructure/token"
	"mail-hub/internal/usecase"

	"mail-hub/config"
	"mail-hub/utils/logger"
	"mail-hub/utils/otel"

	"golang.org/x/sync/errgroup"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		// Docker healthcheck in distroless image
		case "healthcheck":
			if err := runHealthcheck(); err != nil {
				fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
				os.Exit(1)
			}
			os.Exit(0)
		case "backfill-avatars":
			if err := runBackfillAvatars(); err != nil {
				fmt.Fprintf(os.Stderr, "Avatar backfill failed: %v\n", err)
				os.Exit(1)
			}
			os.Exit(0)
		}
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	log := logger.Init(otelCfg.Enabled)

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"root_domain", cfg.RootDomain,
		"session_provider", cfg.SessionProvider,
		"port", cfg.Port,
		"session_cache_ttl", cfg.SessionCacheTTL)

	// Infrastructure
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	jwtIssuer, err := infratoken.NewJWTIssuer(infratoken.JWTConfig{
		Secret:   cfg.MailboxTokenSecret,
		Issuer:   cfg.MailboxTokenIssuer,
		Audience: cfg.MailboxTokenAudience,
		TTL:      cfg.MailboxTokenTTL,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create mailbox token issuer", "error", err)
		os.Exit(1)
	}

	var (
		sessions domain.SessionValidator
		users    domain.UserRepository
	)
	switch cfg.SessionProvider {
	case config.ProviderKratos:
		kratos := gateway.NewKratosGateway(cfg.KratosURL, cfg.KratosAdminURL, 5*time.Second)
		sessions, users = kratos, kratos
		if len(cfg.SessionCookies) == 0 {
			cfg.SessionCookies = []string{gateway.DefaultKratosCookie}
		}
	default:
		sessions = postgres.NewSessionValidator(pool, cfg.SessionSecret, log)
		users = postgres.NewUserRepository(pool, log)
	}

	resend := gateway.NewResendGateway(cfg.ResendBaseURL, cfg.ResendAPIKey, 15*time.Second, log)
	e, stopLimiters := newServer(cfg, ports{
		sessions: sessions,
		users:    users,
		emails:   postgres.NewEmailRepository(pool, log),
		sender:   resend,
		fetcher:  resend,
		analyzer: gateway.NewMistralGateway(cfg.MistralBaseURL, cfg.MistralAPIKey, cfg.MistralModel, 30*time.Second, log),
		tokens:   jwtIssuer,
		db:       pool,
	}, serverOptions{otelEnabled: otelCfg.Enabled, serviceName: otelCfg.ServiceName}, log)
	defer stopLimiters()

	// Start server with errgroup for graceful shutdown
	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting mail-hub server", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited properly")
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}

// runBackfillAvatars gives every user without a profile image a generated
// avatar.
func runBackfillAvatars() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	log := logger.Init(false)
	pool, err := postgres.NewPool(ctx, dsn, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	start := time.Now()
	ctx = logger.WithOperation(ctx, "backfill_avatars")
	uc := usecase.NewBackfillAvatars(postgres.NewUserRepository(pool, log), avatar.NewGlass(0), log)
	updated, err := uc.Execute(ctx)
	if err != nil {
		logger.GlobalContext.LogError(ctx, "backfill_avatars", err)
		return err
	}
	logger.GlobalContext.LogDuration(ctx, "backfill_avatars", time.Since(start))
	fmt.Printf("Updated %d users with avatars\n", updated)
	return nil
}
