package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"summarly/internal/domain/entity"
	hhttp "summarly/internal/handler/http"
	hauth "summarly/internal/handler/http/auth"
	"summarly/internal/handler/http/middleware"
	"summarly/internal/handler/http/requestid"
	pgRepo "summarly/internal/infra/adapter/persistence/postgres"
	"summarly/internal/infra/db"
	"summarly/internal/infra/extractor"
	"summarly/internal/infra/summarizer"
	"summarly/internal/infra/worker"
	"summarly/internal/observability/logging"
	"summarly/internal/observability/tracing"
	"summarly/internal/pkg/config"
	"summarly/internal/repository"
	"summarly/internal/resilience/circuitbreaker"
	ledgerUC "summarly/internal/usecase/ledger"
	sumUC "summarly/internal/usecase/summarize"
	"summarly/pkg/quota"
)

func main() {
	logger := initLogger()
	validateJWTSecret(logger)
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	components := setupServer(logger, database, version)

	runServer(logger, components, version)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// validateJWTSecret validates the JWT_SECRET environment variable for security requirements.
func validateJWTSecret(logger *slog.Logger) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	// セキュリティ: 最小32文字（256ビット）を強制
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	// セキュリティ: よくある弱い秘密鍵を拒否
	weakSecrets := []string{"secret", "password", "test", "admin", "default"}
	for _, weak := range weakSecrets {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler    http.Handler
	QuotaStore *quota.InMemoryStore

	// CleanupSchedule is the cron expression for the daily quota bucket
	// eviction job.
	CleanupSchedule string
}

// setupServer wires the summarization pipeline and returns the HTTP handler
// with all routes and middleware.
func setupServer(logger *slog.Logger, database *sql.DB, version string) *ServerComponents {
	// Account store behind a database circuit breaker
	guardedDB := circuitbreaker.NewDBCircuitBreaker(database)
	accounts := pgRepo.NewAccountRepo(guardedDB)

	// Guest quota store with Prometheus instrumentation
	quotaStore := quota.NewInMemoryStore(quota.InMemoryStoreConfig{
		MaxKeys: loadIntConfig(logger, "QUOTA_MAX_KEYS", 10000, 100, 1_000_000),
		Metrics: quota.NewPrometheusMetrics(prometheus.DefaultRegisterer),
	})

	dailyLimit := loadIntConfig(logger, "GUEST_DAILY_LIMIT", 5, 1, 1000)
	ledgerSvc := ledgerUC.NewService(quotaStore, accounts, dailyLimit)

	// Bounded worker pool for extraction and summarization
	poolMetrics := worker.NewPoolMetrics()
	poolCfg, err := worker.LoadConfigFromEnv(logger, poolMetrics)
	if err != nil {
		logger.Error("failed to load worker pool configuration", slog.Any("error", err))
		os.Exit(1)
	}
	pool := worker.NewPool(*poolCfg, logger, poolMetrics)

	svcCfg := sumUC.DefaultConfig()
	svcCfg.MaxGuestTextLength = loadIntConfig(logger, "MAX_GUEST_TEXT_LENGTH", svcCfg.MaxGuestTextLength, 100, 1_000_000)
	svcCfg.MaxFileSize = int64(loadIntConfig(logger, "MAX_FILE_SIZE_MB", 10, 1, 100)) << 20
	svcCfg.MaxExtractedWordCount = loadIntConfig(logger, "MAX_EXTRACTED_WORD_COUNT", svcCfg.MaxExtractedWordCount, 100, 1_000_000)
	svcCfg.Params = summarizer.LoadParams()

	ext := extractor.New(extractor.Config{MaxFileSize: svcCfg.MaxFileSize})

	summaryMetrics := summarizer.NewPrometheusSummaryMetrics()
	engines := map[entity.Strategy]summarizer.Engine{
		entity.StrategyAbstractive: summarizer.NewAbstractive(modelBackendFactory(logger), summaryMetrics),
		entity.StrategyExtractive:  summarizer.NewExtractive(summaryMetrics),
	}

	svc := sumUC.NewService(&ledgerSvc, ext, pool, engines, svcCfg)

	rootMux := setupRoutes(logger, database, version, svc, accounts, svcCfg.MaxFileSize)
	handler := applyMiddleware(logger, rootMux, svcCfg.MaxFileSize)

	scheduleResult := config.LoadEnvWithFallback("QUOTA_CLEANUP_SCHEDULE", "0 0 * * *", config.ValidateCronSchedule)
	logWarnings(logger, scheduleResult.Warnings)

	return &ServerComponents{
		Handler:         handler,
		QuotaStore:      quotaStore,
		CleanupSchedule: scheduleResult.Value.(string),
	}
}

// modelBackendFactory returns the lazy constructor for the abstractive
// engine's model backend. The backend is only built on the first abstractive
// request, so a missing API key does not block startup.
func modelBackendFactory(logger *slog.Logger) func() (summarizer.ModelBackend, error) {
	return func() (summarizer.ModelBackend, error) {
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			logger.Info("abstractive backend selected", slog.String("backend", "claude"))
			return summarizer.NewClaude(key), nil
		}
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg, err := summarizer.LoadOpenAIConfig()
			if err != nil {
				return nil, err
			}
			logger.Info("abstractive backend selected", slog.String("backend", "openai"))
			return summarizer.NewOpenAI(key, cfg), nil
		}
		logger.Warn("no model API key configured, abstractive summaries fall back to truncation")
		return summarizer.NewNoOp(), nil
	}
}

// setupRoutes registers all HTTP routes (public and identity-resolved).
func setupRoutes(logger *slog.Logger, database *sql.DB, version string, svc hhttp.SummarizeService, accounts repository.AccountRepository, maxUpload int64) *http.ServeMux {
	// Client IP extraction for guest identity keys
	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var ipExtractor middleware.IPExtractor
	if proxyConfig.Enabled {
		ipExtractor = middleware.NewTrustedProxyExtractor(*proxyConfig)
		logger.Info("guest identity: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
	} else {
		ipExtractor = &middleware.RemoteAddrExtractor{}
		logger.Info("guest identity: using RemoteAddr (secure mode, proxy headers ignored)")
	}

	identity := hauth.Identity([]byte(os.Getenv("JWT_SECRET")), accounts, ipExtractor)

	summarizeHandler := &hhttp.SummarizeHandler{Service: svc, Logger: logger, MaxUploadBytes: maxUpload}

	mux := http.NewServeMux()
	mux.Handle("/summarize", identity(http.HandlerFunc(summarizeHandler.Text)))
	mux.Handle("/summarize/file", identity(http.HandlerFunc(summarizeHandler.File)))

	// ヘルスチェックエンドポイント（認証不要）
	mux.Handle("/healthz", &hhttp.HealthHandler{DB: database, Version: version})
	mux.Handle("/ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("/live", &hhttp.LiveHandler{})
	mux.Handle("/metrics", hhttp.MetricsHandler())

	return mux
}

// applyMiddleware wraps the handler with the middleware chain.
// Order: Request ID → Tracing → Recovery → Logging → Timeout → Input Validation → Metrics
func applyMiddleware(logger *slog.Logger, handler http.Handler, maxUpload int64) http.Handler {
	// Multipart overhead on top of the raw file limit
	maxBody := maxUpload + (1 << 20)

	timeoutResult := config.LoadEnvDuration("REQUEST_TIMEOUT", 120*time.Second, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Second, 10*time.Minute)
	})
	logWarnings(logger, timeoutResult.Warnings)
	requestTimeout := timeoutResult.Value.(time.Duration)

	middlewareChain := handler

	// Apply in reverse order (innermost to outermost)
	middlewareChain = hhttp.MetricsMiddleware(middlewareChain)
	middlewareChain = hhttp.InputValidation(maxBody)(middlewareChain)
	middlewareChain = hhttp.Timeout(requestTimeout)(middlewareChain)
	middlewareChain = hhttp.Logging(logger)(middlewareChain)
	middlewareChain = hhttp.Recover(logger)(middlewareChain)
	middlewareChain = tracing.Middleware(middlewareChain)
	middlewareChain = requestid.Middleware(middlewareChain)

	return middlewareChain
}

// loadIntConfig loads an integer configuration value with range validation,
// falling back to the default on invalid input.
func loadIntConfig(logger *slog.Logger, envKey string, defaultValue, min, max int) int {
	result := config.LoadEnvInt(envKey, defaultValue, func(v int) error {
		return config.ValidateIntRange(v, min, max)
	})
	logWarnings(logger, result.Warnings)
	return result.Value.(int)
}

func logWarnings(logger *slog.Logger, warnings []string) {
	for _, warning := range warnings {
		logger.Warn("configuration fallback", slog.String("warning", warning))
	}
}

// runServer starts the HTTP server, the daily quota eviction job, and
// handles graceful shutdown.
func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	// Context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Daily quota bucket eviction: buckets from previous days are dead
	// weight once the day rolls over.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(components.CleanupSchedule, func() {
		if err := components.QuotaStore.Cleanup(ctx, quota.DayOf(time.Now())); err != nil {
			logger.Error("quota cleanup failed", slog.Any("error", err))
		}
	}); err != nil {
		logger.Error("failed to schedule quota cleanup", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()
	logger.Info("quota cleanup scheduled", slog.String("schedule", components.CleanupSchedule))

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", ":8080"),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Cancel background goroutines
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
