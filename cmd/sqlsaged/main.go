// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Sqlsaged is the entry point for the SQLSage query intelligence engine.

It answers natural-language questions against a registered Postgres database
by retrieving schema context, generating candidate SQL interpretations, and
executing the chosen one under a safety validator — end to end, C1 through
C12.

Usage:

	go run cmd/sqlsaged/main.go [flags]

The flags/environment variables are:

	SERVER_PORT           Port to listen on (default: 8080)
	ENVIRONMENT           deployment environment (development, production)
	CATALOG_DATABASE_URL  Postgres connection string for SQLSage's own bookkeeping (required)
	REDIS_URL             Redis connection string for the learning front-cache (required)
	LM_API_KEY            API key for the language model and embedding providers

Startup Sequence:

 1. Logger: Initialize structured JSON logging (slog).
 2. Config: Load and validate environment variables.
 3. Storage: Establish connections to the catalog Postgres pool and Redis.
 4. Migration: Run idempotent catalog schema updates.
 5. Wiring: Construct C1-C12 plus the registration orchestrator.
 6. Server: Bind HTTP listener and handle graceful shutdown.

No business logic lives here. This file is strictly for orchestration and wiring.
*/
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

	"github.com/sqlsage/sqlsage/internal/api"
	"github.com/sqlsage/sqlsage/internal/catalog"
	"github.com/sqlsage/sqlsage/internal/dbregistry"
	"github.com/sqlsage/sqlsage/internal/executor"
	"github.com/sqlsage/sqlsage/internal/learning"
	"github.com/sqlsage/sqlsage/internal/llm"
	"github.com/sqlsage/sqlsage/internal/platform/config"
	"github.com/sqlsage/sqlsage/internal/platform/constants"
	"github.com/sqlsage/sqlsage/internal/platform/migration"
	pgstore "github.com/sqlsage/sqlsage/internal/platform/postgres"
	redisstore "github.com/sqlsage/sqlsage/internal/platform/redis"
	"github.com/sqlsage/sqlsage/internal/querybuilder"
	"github.com/sqlsage/sqlsage/internal/registration"
	"github.com/sqlsage/sqlsage/internal/resultstore"
	"github.com/sqlsage/sqlsage/internal/safety"
	"github.com/sqlsage/sqlsage/internal/vectorindex"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application_startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// # 1. Logger
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// # 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. A 30s deadline prevents the app from hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// # 3. Catalog Postgres pool
	//
	// The pgvector wire types must be registered on every physical connection
	// the pool opens, not just the first one, so it rides along as an
	// AfterConnect hook rather than a one-time call after NewPool returns.
	catalogPool, err := pgstore.NewPool(startupCtx, cfg.CatalogDatabaseURL, pgstore.DefaultCatalogPoolConfig(), log, vectorindex.RegisterPgvectorTypes)
	if err != nil {
		return fmt.Errorf("connect to catalog postgres: %w", err)
	}
	defer func() {
		log.Info("closing catalog postgres pool")
		catalogPool.Close()
	}()

	// # 4. Redis (adaptive learning front-cache)
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// # 5. Migrations
	if err := migration.RunUp(cfg.CatalogDatabaseURL, cfg.MigrationPath, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// # 6. Health Wiring
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), catalogPool, 2*time.Second)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// # 7. Schema Store (C2) and Inspector (C3)
	catalogStore := catalog.NewPostgresStore(catalogPool)
	inspector := catalog.NewInspector()

	// # 8. Adaptive Learning Store (C6)
	learningStore := learning.NewPostgresStore(catalogPool, rdb)

	// # 9. Vector Context Index (C5)
	embedder := vectorindex.NewCachingEmbedder(vectorindex.NewOpenAIEmbedder(cfg.LM.APIKey), constants.EmbeddingCacheSize)
	vectorStore := vectorindex.NewPostgresStore(catalogPool)
	vectorIndex := vectorindex.New(embedder, vectorStore, cfg.Retrieval)

	// # 10. Language Model Adapter (C8)
	languageModel := llm.NewOpenAILanguageModel(cfg.LM, log)

	// # 11. Safety Validator (C1)
	allowedOps := make([]safety.Operation, 0, len(cfg.Safety.AllowedOperations))
	for _, op := range cfg.Safety.AllowedOperations {
		allowedOps = append(allowedOps, safety.Operation(op))
	}
	validator := safety.New(safety.Limits{
		MaxSQLLength:    cfg.Safety.MaxSQLLength,
		MaxPromptLength: cfg.Safety.MaxPromptLength,
	}, allowedOps...)

	// # 12. Query Builder (C9: candidates, interpretation, confidence)
	builder := querybuilder.New(validator, catalogStore, vectorIndex, learningStore, languageModel, cfg.Retrieval)

	// Background context for the whole application lifecycle; its
	// cancellation signals every background sweep loop to stop.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// # 13. Connection Pool Registry (C11)
	registry := dbregistry.New(cfg.Pool, log)
	go registry.RunIdleEviction(appCtx, constants.IdleEvictionInterval)
	defer registry.CloseAll()

	// # 14. Result Store (C12)
	results := resultstore.New()
	resultsDone := make(chan struct{})
	go results.RunEvictionLoop(resultsDone, constants.ResultEvictionInterval)
	defer close(resultsDone)

	// # 15. Executor (C10)
	exec := executor.New(registry, results, validator, catalogStore, catalogPool, cfg.Executor, log)
	execDone := make(chan struct{})
	go exec.RunCleanupLoop(execDone, constants.QueryCleanupInterval, constants.QueryCleanupMaxAge)
	defer close(execDone)

	// # 16. Registration orchestrator (database onboarding + schema analysis)
	registrar := registration.New(catalogStore, registry, inspector, vectorIndex, log)

	// # 17. API Assembly
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Admin:     api.NewAdminHandler(registrar),
		Query:     api.NewQueryHandler(builder, exec),
		Progress:  api.NewProgressHandler(exec),
	}

	server := api.NewServer(appCtx, cfg, log, handlers)

	// # 18. Lifecycle Handling
	shutdownErr := make(chan error, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownErr <- fmt.Errorf("http_server_crash: %w", err)
		}
	}()

	log.Info("sqlsage_engine_running", slog.String("port", cfg.ServerPort))

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-shutdownErr:
		return err
	}

	appCancel() // Signal background sweep loops to stop.

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("server_shutdown_failed: %w", err)
	}

	log.Info("graceful_shutdown_complete")
	return nil
}
