package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-event-pipeline/config"
	httpHandler "payment-event-pipeline/internal/adapter/http/handler"
	"payment-event-pipeline/internal/adapter/ledger"
	"payment-event-pipeline/internal/adapter/mail"
	"payment-event-pipeline/internal/adapter/provider"
	pgStorage "payment-event-pipeline/internal/adapter/storage/postgres"
	redisStorage "payment-event-pipeline/internal/adapter/storage/redis"
	"payment-event-pipeline/internal/core/ports"
	"payment-event-pipeline/internal/service"
	"payment-event-pipeline/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Payment Event Pipeline")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	eventRepo := pgStorage.NewWebhookEventRepo(pool)
	claimRepo := pgStorage.NewSideEffectClaimRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)

	// Provider and ledger clients are owned here and injected downstream.
	stripeAPI := provider.NewStripeClient(cfg.Provider, &http.Client{Timeout: cfg.Pipeline.RefetchTimeout})
	verifier := provider.NewVerifier(cfg.Provider.WebhookSecret, cfg.Provider.SignatureTolerance)
	refetcher := provider.NewRefetcher(stripeAPI, logger.Component(log, "refetch"))
	ledgerClient := ledger.NewClient(cfg.Ledger, service.NewHMACSignatureService())

	var confirmations ports.ConfirmationService
	if cfg.Mail.Enabled {
		confirmations = service.NewConfirmationService(claimRepo, mail.NewMailer(cfg.Mail), logger.Component(log, "confirmation"))
		log.Info().Str("smtp_host", cfg.Mail.Host).Msg("Order confirmations enabled")
	} else {
		log.Warn().Msg("Mail disabled, order confirmations will not be sent")
	}

	var outcomeCache ports.OutcomeCache
	if cfg.Pipeline.OutcomeCacheTTL > 0 {
		outcomeCache = redisStorage.NewOutcomeCache(rdb)
	}

	// Initialize core services
	pipelineSvc := service.NewPipelineService(
		verifier,
		eventRepo,
		refetcher,
		ledgerClient,
		outcomeCache,
		confirmations,
		cfg.Pipeline,
		logger.Component(log, "pipeline"),
	)
	reprocessSvc := service.NewReprocessService(eventRepo, pipelineSvc, logger.Component(log, "reprocess"))
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Load OpenAPI spec for Swagger UI
	specBytes, err := os.ReadFile("docs/api/openapi.yaml")
	if err == nil {
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		PipelineSvc:    pipelineSvc,
		ReprocessSvc:   reprocessSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:       auditSvc,
		Logger:         log,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		OpenAPISpec:    specBytes,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
