package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"noticedesk_backend/internal/adapters"
	"noticedesk_backend/internal/analytics"
	"noticedesk_backend/internal/auth"
	"noticedesk_backend/internal/catalog"
	"noticedesk_backend/internal/events"
	"noticedesk_backend/internal/followup"
	"noticedesk_backend/internal/funnel"
	apphttp "noticedesk_backend/internal/http"
	"noticedesk_backend/internal/http/router"
	"noticedesk_backend/internal/leads"
	"noticedesk_backend/internal/payments"
	"noticedesk_backend/platform/config"
	"noticedesk_backend/platform/db"
	"noticedesk_backend/platform/logger"
	"noticedesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	followUpClient, closeFollowUp := initFollowUpClient(cfg, log)
	if closeFollowUp != nil {
		defer closeFollowUp()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Analytics forwarder subscribes to domain events (not HTTP-facing)
	if forwarder := analytics.NewForwarder(cfg, log); forwarder != nil {
		forwarder.Register(eventBus)
		log.Info("analytics forwarder registered", "url", cfg.AnalyticsURL)
	}

	authModule := auth.NewModule(cfg, val, log)
	catalogModule := catalog.NewModule(pool, val, log)
	leadsModule := leads.NewModule(pool, val, cfg, log)
	paymentsModule := payments.NewModule(pool, val, cfg, log)

	// Wire the funnel's outbound ports to the concrete modules
	funnelModule := funnel.NewModule(funnel.Deps{
		Leads:    adapters.NewFunnelLeadWriter(leadsModule.Service()),
		Payments: adapters.NewFunnelPaymentPort(paymentsModule.Service()),
		Catalog:  adapters.NewFunnelCatalogReader(catalogModule.Service()),
		FollowUp: adapters.NewFunnelFollowUpScheduler(followUpClient),
	}, eventBus, cfg, val, log)
	funnelModule.StartSweeper(ctx)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			catalogModule,
			leadsModule,
			paymentsModule,
			funnelModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initFollowUpClient(cfg config.SchedulerConfig, log *logger.Logger) (*followup.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; checkout recovery nudges disabled")
		return nil, nil
	}

	client, err := followup.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize followup client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
