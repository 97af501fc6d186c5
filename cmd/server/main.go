package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/finpipe/statement-ledger/internal/adapter/http"
	"github.com/finpipe/statement-ledger/internal/adapter/http/handler"
	"github.com/finpipe/statement-ledger/internal/adapter/http/middleware"
	"github.com/finpipe/statement-ledger/internal/adapter/llm"
	postgresRepo "github.com/finpipe/statement-ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/finpipe/statement-ledger/internal/adapter/repository/redis"
	"github.com/finpipe/statement-ledger/internal/adapter/spreadsheet"
	"github.com/finpipe/statement-ledger/internal/domain"
	"github.com/finpipe/statement-ledger/internal/infrastructure/config"
	"github.com/finpipe/statement-ledger/internal/infrastructure/logger"
	"github.com/finpipe/statement-ledger/internal/infrastructure/metrics"
	"github.com/finpipe/statement-ledger/internal/infrastructure/postgres"
	"github.com/finpipe/statement-ledger/internal/infrastructure/redis"
	"github.com/finpipe/statement-ledger/internal/usecase"
)

const (
	limiterSweepInterval = time.Minute
	limiterMaxIdle       = 10 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLog := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLog

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rules, err := config.LoadRuleSet(cfg.RulesFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.RulesFile).Msg("failed to load classification rules")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseConnectTimeout,
		MaxElapsed:     cfg.DatabaseStartupRetry,
		Logger:         appLog,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	schema := postgresRepo.NewSchemaManager(pool)
	rawRepo := postgresRepo.NewRawMovementRepository(pool)
	classifiedRepo := postgresRepo.NewClassifiedMovementRepository(pool)
	queries := postgresRepo.NewQueryRunner(pool)
	flashStore := redisRepo.NewFlashStore(redisClient, cfg.FlashTTL)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	ingestUC := usecase.NewIngestUseCase(schema, spreadsheet.NewParser(appLog), rawRepo, appLog,
		usecase.WithIngestBatchSize(cfg.IngestBatchSize),
		usecase.WithIngestMetrics(m),
	)
	classifyUC := usecase.NewClassifyUseCase(schema, rawRepo, classifiedRepo, domain.NewClassifier(rules), idGen, m, appLog)
	analystUC := usecase.NewAnalystUseCase(newLanguageModel(ctx, cfg, appLog), queries, m, appLog)

	// Initialize handlers
	uploadHandler := handler.NewUploadHandler(ingestUC, classifyUC, flashStore, handler.UploadConfig{
		Dir:      cfg.UploadDir,
		MaxBytes: cfg.UploadMaxBytes,
	}, appLog)
	analystHandler := handler.NewAnalystHandler(analystUC, appLog)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	limiter := middleware.NewRateLimiter(cfg.AskRateLimit, cfg.AskRateBurst)
	go sweepLimiters(ctx, limiter, limiterSweepInterval, limiterMaxIdle)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		UploadHandler:      uploadHandler,
		AnalystHandler:     analystHandler,
		HealthHandler:      healthHandler,
		RateLimiter:        limiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:             appLog,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed")
	}

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// newLanguageModel builds the Gemini client. Without an API key the server
// still starts and every question fails with a model error.
func newLanguageModel(ctx context.Context, cfg *config.Config, logger zerolog.Logger) usecase.LanguageModel {
	model, err := llm.NewGemini(ctx, llm.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.HTTPWriteTimeout,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("language model unavailable, questions will fail")
		return unavailableModel{err: err}
	}
	return model
}

type unavailableModel struct {
	err error
}

func (m unavailableModel) Generate(context.Context, string) (string, error) {
	return "", m.err
}

func sweepLimiters(ctx context.Context, rl *middleware.RateLimiter, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters(maxIdle)
		}
	}
}
