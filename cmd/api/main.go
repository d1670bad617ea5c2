package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/linkcleaner-service/internal/adapter/browser"
	"github.com/user/linkcleaner-service/internal/adapter/livingapps"
	"github.com/user/linkcleaner-service/internal/adapter/llm"
	"github.com/user/linkcleaner-service/internal/adapter/postgres"
	redis_adapter "github.com/user/linkcleaner-service/internal/adapter/redis"
	"github.com/user/linkcleaner-service/internal/delivery/http/handler"
	"github.com/user/linkcleaner-service/internal/delivery/http/router"
	"github.com/user/linkcleaner-service/internal/repository"
	"github.com/user/linkcleaner-service/internal/usecase"
	"github.com/user/linkcleaner-service/pkg/config"
	"github.com/user/linkcleaner-service/pkg/logger"
	"github.com/user/linkcleaner-service/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg := config.Load()

	// --- Logger ---
	logLevel := logger.ParseLevel(cfg.LogLevel)
	logger.Init(os.Stdout, logLevel)
	slog.Info("Logger initialized", "level", logLevel.String())

	// --- Metrics ---
	metrics.Init()
	slog.Info("Metrics initialized")

	if cfg.StoreAppID == "" {
		slog.Error("LIVINGAPPS_APP_ID is required")
		os.Exit(1)
	}

	// --- Database Connections ---
	ctx := context.Background()

	// PostgreSQL (failure audit trail)
	pgConnString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
	dbpool, err := pgxpool.New(ctx, pgConnString)
	if err != nil {
		slog.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	slog.Info("PostgreSQL connection pool established")

	// Redis (transient state)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Redis connection established")

	// --- Repositories ---
	recordStore := livingapps.NewRecordStore(cfg.StoreBaseURL, cfg.StoreAppID, cfg.StoreSessionToken)
	failedExtractionRepo := postgres.NewFailedExtractionRepo(dbpool)
	copyAckRepo := redis_adapter.NewCopyAckRepo(rdb)
	pendingDeleteRepo := redis_adapter.NewPendingDeleteRepo(rdb)

	extractor, err := buildExtractor(cfg)
	if err != nil {
		slog.Error("Unable to build extractor", "mode", cfg.ExtractorMode, "error", err)
		os.Exit(1)
	}
	slog.Info("Extractor ready", "mode", cfg.ExtractorMode)

	// --- Use Cases ---
	history := usecase.NewHistoryCollection(recordStore)
	extraction := usecase.NewExtractionManager(extractor, recordStore, history, failedExtractionRepo, cfg.ExtractorMode)
	transient := usecase.NewTransientManager(copyAckRepo, pendingDeleteRepo, recordStore, history)

	// Initial load; a failure is not fatal, the first refresh will reconcile.
	if err := history.Refresh(ctx); err != nil {
		slog.Warn("Initial history load failed", "error", err)
	} else {
		slog.Info("History loaded", "records", history.Len())
	}

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(extraction, history, transient, recordStore, failedExtractionRepo, cfg.StoreBaseURL, cfg.StoreAppID)
	httpRouter := router.New(apiHandler)

	server := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     httpRouter,
		ReadTimeout: 5 * time.Second,
		// Extraction round-trips can take tens of seconds.
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("Starting server", "port", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
		os.Exit(1)
	}
}

func buildExtractor(cfg *config.Config) (repository.LinkExtractor, error) {
	switch cfg.ExtractorMode {
	case "browser":
		return browser.NewRedirectResolver(cfg.PageLoadTimeout)
	case "llm", "":
		return llm.NewExtractor(llm.Config{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown extractor mode %q", cfg.ExtractorMode)
	}
}
