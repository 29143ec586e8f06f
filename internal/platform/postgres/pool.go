// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package postgres provides a tunable PostgreSQL connection pool factory.

It is used twice in this module: once for SQLSage's own catalog database
(registry, snapshots, query history, learning records), and once per target
database opened on demand by the connection pool registry (internal/dbregistry)
for the databases being introspected and queried. Both callers supply their
own [PoolConfig] so that target-database pools — short-lived, many of them,
lower per-pool connection caps — are tuned independently from the catalog
pool, which is long-lived and heavier.

Architecture:

  - Pool: Thread-safe connection pooling with automatic health checks (Ping).
  - Tuning: Configures MaxConns, MinConns, and MaxConnIdleTime for scalability.
  - Safety: Sets a per-connection statement_timeout to bound runaway queries.
*/
package postgres

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig tunes a single [pgxpool.Pool] instance.
type PoolConfig struct {
	// MaxConns is the maximum number of connections in the pool.
	MaxConns int32
	// MinConns keeps a warm set of connections to avoid cold-start latency.
	MinConns int32
	// MaxConnLifetime ensures connections are periodically recycled.
	MaxConnLifetime time.Duration
	// MaxConnIdleTime closes connections that have been idle too long.
	MaxConnIdleTime time.Duration
	// HealthCheckPeriod is the frequency of background connection health checks.
	HealthCheckPeriod time.Duration
	// ConnectTimeout is the maximum time allowed to establish a new connection.
	ConnectTimeout time.Duration
	// PingTimeout is the maximum duration for a health check ping.
	PingTimeout time.Duration
	// StatementTimeout bounds every statement executed on a pooled connection.
	// Set via AfterConnect so it applies uniformly regardless of caller.
	StatementTimeout time.Duration
}

// DefaultCatalogPoolConfig returns opinionated settings for SQLSage's own
// long-lived catalog pool.
func DefaultCatalogPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:          25,
		MinConns:          5,
		MaxConnLifetime:   60 * time.Minute,
		MaxConnIdleTime:   10 * time.Minute,
		HealthCheckPeriod: 1 * time.Minute,
		ConnectTimeout:    5 * time.Second,
		PingTimeout:       2 * time.Second,
		StatementTimeout:  30 * time.Second,
	}
}

// DefaultTargetPoolConfig returns conservative settings for a pool opened on
// demand against one of the many target databases the registry manages.
func DefaultTargetPoolConfig(statementTimeout time.Duration) PoolConfig {
	return PoolConfig{
		MaxConns:          8,
		MinConns:          0,
		MaxConnLifetime:   30 * time.Minute,
		MaxConnIdleTime:   5 * time.Minute,
		HealthCheckPeriod: 1 * time.Minute,
		ConnectTimeout:    5 * time.Second,
		PingTimeout:       2 * time.Second,
		StatementTimeout:  statementTimeout,
	}
}

// # Lifecycle Management

// NewPool creates and validates a new PostgreSQL connection pool against dsn,
// tuned per cfg. Any afterConnect hooks run after the built-in statement
// timeout is applied, in order — used by the catalog pool to additionally
// register pgvector's wire types (internal/vectorindex) on every connection.
func NewPool(context stdctx.Context, dsn string, cfg PoolConfig, logger *slog.Logger, afterConnect ...func(stdctx.Context, *pgx.Conn) error) (*pgxpool.Pool, error) {

	// Step 1: Parse the DSN string
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	// Step 2: Apply pool tuning parameters
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	// AfterConnect is called each time a new physical connection is established.
	// We use it to set a per-connection statement timeout for safety, then run
	// any caller-supplied hooks.
	poolConfig.AfterConnect = func(context stdctx.Context, connection *pgx.Conn) error {
		timeoutQuery := fmt.Sprintf("SET statement_timeout = '%ds'", int(cfg.StatementTimeout.Seconds()))
		if _, err := connection.Exec(context, timeoutQuery); err != nil {
			return err
		}
		for _, hook := range afterConnect {
			if err := hook(context, connection); err != nil {
				return err
			}
		}
		return nil
	}

	// Step 3: Establish the pool
	connectCtx, cancel := stdctx.WithTimeout(context, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	// Step 4: Validate that we can actually reach the database
	if err := Ping(context, pool, cfg.PingTimeout); err != nil {
		pool.Close()
		return nil, err
	}

	// Step 5: Log pool statistics on startup
	stats := pool.Stat()
	logger.Info("postgres pool connected",
		slog.Int("max_conns", int(stats.MaxConns())),
		slog.Int("total_conns", int(stats.TotalConns())),
	)

	return pool, nil
}

// # Health Checks

// Ping verifies that the PostgreSQL connection pool is healthy.
func Ping(context stdctx.Context, pool *pgxpool.Pool, timeout time.Duration) error {

	// Execute a lightweight ping with a strict timeout
	pingCtx, cancel := stdctx.WithTimeout(context, timeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}

	return nil
}
