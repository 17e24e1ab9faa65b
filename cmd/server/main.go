// Command server runs the access gate in front of the FirstCareerSteps web
// application: it classifies page navigations, resolves the caller's
// identity, enforces access decisions, and hosts the admin user-management
// API behind the fail-closed admin guard.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"careergate/internal/account/service"
	"careergate/internal/account/store"
	"careergate/internal/admin/guard"
	guardmetrics "careergate/internal/admin/guard/metrics"
	"careergate/internal/admin/handler"
	"careergate/internal/gate"
	gatemetrics "careergate/internal/gate/metrics"
	httpapi "careergate/internal/http"
	"careergate/internal/identity"
	"careergate/internal/identity/session"
	"careergate/internal/platform/config"
	"careergate/internal/platform/httpserver"
	"careergate/internal/platform/logger"
	"careergate/internal/platform/postgres"
	"careergate/internal/platform/redis"
	"careergate/pkg/platform/audit"
	auditkafka "careergate/pkg/platform/audit/kafka"
	"careergate/pkg/platform/audit/publisher"
	auditmemory "careergate/pkg/platform/audit/store/memory"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := make(map[string]httpapi.HealthChecker)

	// Account store. Postgres when configured, in-memory for development.
	var accounts store.Store
	if cfg.PostgresURL != "" {
		pool, err := postgres.New(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		accounts = store.NewPostgres(pool)
		health["postgres"] = pool.Ping
		log.Info("using postgres account store")
	} else {
		accounts = store.NewInMemoryStore()
		log.Warn("no postgres configured, using in-memory account store")
	}

	// Session store. Redis when configured, in-memory for development.
	var sessions session.Store
	redisClient, err := redis.New(cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient.Client)
		health["redis"] = redisClient.Health
		log.Info("using redis session store")
	} else {
		sessions = session.NewInMemoryStore()
		log.Warn("no redis configured, using in-memory session store")
	}

	// Audit fan-out. Kafka when configured, store-backed otherwise.
	var auditor audit.Auditor
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := auditkafka.New(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			return err
		}
		defer kafkaPub.Close()
		auditor = kafkaPub
		log.Info("publishing audit events to kafka", "topic", cfg.AuditTopic)
	} else {
		storePub := publisher.NewPublisher(auditmemory.NewInMemoryStore(), publisher.WithAsyncBuffer(256))
		defer storePub.Close()
		auditor = storePub
	}

	// Identity providers, tried in order. The session cookie is the
	// primary credential; bearer tokens and the external auth provider
	// cover API clients and migration traffic.
	providers := []identity.Provider{
		session.NewCookieProvider(sessions, cfg.SessionCookieName, cfg.SessionTTL, cfg.SessionRefreshAfter),
	}
	if cfg.JWTSigningKey != "" {
		providers = append(providers, identity.NewJWTProvider(cfg.JWTSigningKey))
	}
	if cfg.AuthProviderURL != nil {
		providers = append(providers, identity.NewHTTPProvider(cfg.AuthProviderURL, cfg.AuthProviderKey))
	}
	resolver := identity.NewResolver(log, providers...)

	classifier := gate.NewClassifier(cfg.ProtectedPrefixes)
	engine := gate.NewEngine(classifier, accounts, gate.BlockedAdminPolicy(cfg.BlockedAdminPolicy), log, gatemetrics.New())
	gateMiddleware := gate.NewMiddleware(resolver, engine, classifier, auditor, cfg.SessionCookieName, log)

	adminGuard := guard.New(resolver, accounts, log, guardmetrics.New())
	users := service.New(accounts, auditor, log)
	adminHandler := handler.New(users, resolver, accounts, auditor, log)

	router := httpapi.New(httpapi.Deps{
		Logger:   log,
		Gate:     gateMiddleware,
		Guard:    adminGuard,
		Admin:    adminHandler,
		Upstream: cfg.UpstreamURL,
		Health:   health,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr, "upstream", cfg.UpstreamURL.String())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
