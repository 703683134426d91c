package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/vouch/internal"
	"github.com/DukeRupert/vouch/internal/ai"
	"github.com/DukeRupert/vouch/internal/ai/anthropic"
	"github.com/DukeRupert/vouch/internal/ai/mock"
	"github.com/DukeRupert/vouch/internal/auth"
	"github.com/DukeRupert/vouch/internal/billing"
	"github.com/DukeRupert/vouch/internal/email"
	"github.com/DukeRupert/vouch/internal/handler"
	"github.com/DukeRupert/vouch/internal/jobs"
	"github.com/DukeRupert/vouch/internal/metrics"
	"github.com/DukeRupert/vouch/internal/middleware"
	"github.com/DukeRupert/vouch/internal/repository"
	"github.com/DukeRupert/vouch/internal/service"
	"github.com/DukeRupert/vouch/internal/storage"
	"github.com/DukeRupert/vouch/internal/worker"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(ctx, db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	store := repository.NewStore(db)

	// ==========================================================================
	// External providers
	// ==========================================================================

	fileStore, err := newStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	classifier, err := newClassifier(cfg, logger)
	if err != nil {
		return fmt.Errorf("classifier initialization failed: %w", err)
	}

	sender, err := newEmailSender(cfg, logger)
	if err != nil {
		return fmt.Errorf("email initialization failed: %w", err)
	}

	prices := billing.PriceConfig{
		FreePriceID:    cfg.StripeFreePriceID,
		PremiumPriceID: cfg.StripePremiumPriceID,
	}
	provider := billing.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	// ==========================================================================
	// Services
	// ==========================================================================

	clock := service.Clock(func() time.Time { return time.Now().UTC() })
	grants := auth.NewSigner(cfg.VerificationGrantSecret, cfg.VerificationGrantTTL, clock)
	access := auth.NewSigner(cfg.AccessTokenSecret, cfg.AccessTokenTTL, clock)

	emailQueue := email.NewQueue(store)
	quotaService := service.NewQuotaService(cfg.Quotas, store, logger)
	entitlement := service.NewEntitlementResolver(store, provider, prices, clock, logger)
	billingService := service.NewBillingService(store, provider, entitlement, prices, cfg.FrontendURL, logger)
	verificationService := service.NewVerificationService(store, store, billingService, emailQueue, grants, clock, logger)
	accountService := service.NewAccountService(service.AccountDeps{
		Accounts:     store,
		Requests:     store,
		Verification: verificationService,
		Quota:        quotaService,
		Prices:       prices,
		Access:       access,
	}, logger)
	configService := service.NewTestimonialConfigService(store, quotaService, logger)
	landingPageService := service.NewLandingPageService(store, store, entitlement, quotaService, logger)
	testimonialService := service.NewTestimonialService(service.TestimonialDeps{
		Testimonials: store,
		LandingPages: store,
		Configs:      store,
		Counts:       store,
		Entitlement:  entitlement,
		Quota:        quotaService,
		Classifier:   classifier,
		Images:       service.NewImageUploader(fileStore, service.NewImagingProcessor(), logger),
		Clock:        clock,
	}, logger)

	// ==========================================================================
	// Background worker
	// ==========================================================================

	var bg *worker.Worker
	if cfg.WorkerEnabled {
		workerCfg := worker.DefaultConfig()
		workerCfg.Concurrency = cfg.WorkerConcurrency
		workerCfg.PollInterval = cfg.WorkerPollInterval
		workerCfg.JobTimeout = cfg.WorkerJobTimeout
		if workerCfg.StaleJobThreshold <= workerCfg.JobTimeout {
			workerCfg.StaleJobThreshold = 2 * workerCfg.JobTimeout
		}

		bg, err = worker.New(store, workerCfg, logger)
		if err != nil {
			return fmt.Errorf("worker initialization failed: %w", err)
		}
		bg.Register(jobs.NewSendEmailHandler(sender, logger))
		bg.Start(ctx)
	} else {
		logger.Warn("Background worker disabled; queued emails will not be delivered")
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	authMw := middleware.NewBearerAuth(accountService, logger)
	rateLimits := middleware.NewAuthRateLimiter(logger)
	stopSweep := make(chan struct{})
	rateLimits.Run(stopSweep)
	defer close(stopSweep)

	mux := http.NewServeMux()

	handler.NewHealthHandler(db, store, logger).RegisterRoutes(mux)
	handler.NewAccountHandler(accountService, verificationService, logger).RegisterRoutes(mux, authMw.RequireAccount, rateLimits.Limits())
	handler.NewVerificationHandler(verificationService, logger).RegisterRoutes(mux, rateLimits.Limits())
	handler.NewTestimonialConfigHandler(configService, logger).RegisterRoutes(mux, authMw.RequireAccount)
	handler.NewLandingPageHandler(landingPageService, logger).RegisterRoutes(mux, authMw.RequireAccount)
	handler.NewTestimonialHandler(testimonialService, logger).RegisterRoutes(mux, authMw.RequireAccount)
	handler.NewBillingHandler(billingService, logger).RegisterRoutes(mux, authMw.RequireAccount)

	// Uploaded images when storing on local disk
	if cfg.StorageProvider == "local" {
		files := http.FileServer(http.Dir(cfg.LocalStoragePath))
		mux.Handle("GET /files/", http.StripPrefix("/files/", files))
	}

	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	if !metricsAuth.Enabled() {
		logger.Warn("METRICS_USERNAME and METRICS_PASSWORD unset; /metrics is unprotected")
	}
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handler.NotFoundResponse(w, r, logger)
	})

	stack := middleware.Stack(
		middleware.NewSecurityHeadersMiddleware(!cfg.IsDevelopment()).Handler,
		middleware.NewRequestLoggingMiddleware(logger).Handler,
		metrics.Middleware,
	)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           stack(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			sigChan <- syscall.SIGTERM
		}
	}()

	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	if bg != nil {
		bg.Stop()
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func newStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case "r2":
		return storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
	default:
		return storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
}

func newClassifier(cfg *internal.Config, logger *slog.Logger) (ai.SentimentClassifier, error) {
	if cfg.AIProvider != "anthropic" {
		logger.Info("Using mock sentiment classifier")
		return mock.New(logger), nil
	}
	return anthropic.New(anthropic.Config{
		APIKey: cfg.AnthropicAPIKey,
		Model:  cfg.AnthropicModel,
		ProviderConfig: ai.ProviderConfig{
			MaxRetries:     cfg.AIMaxRetries,
			RetryBaseDelay: cfg.AIRetryBaseDelay,
			RequestTimeout: cfg.AIRequestTimeout,
		},
	}, logger)
}

func newEmailSender(cfg *internal.Config, logger *slog.Logger) (email.Sender, error) {
	switch cfg.EmailProvider {
	case "postmark":
		return email.NewPostmarkSender(email.PostmarkConfig{
			ServerToken:  cfg.PostmarkServerToken,
			AccountToken: cfg.PostmarkAccountToken,
			From:         cfg.EmailFrom,
			FromName:     cfg.EmailFromName,
			ReplyTo:      cfg.EmailReplyTo,
		}, logger)
	case "log":
		return email.NewLogSender(logger), nil
	default:
		return email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
		}, logger)
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
