// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package dbregistry implements the Connection Pool (C11): a registry of
per-target-database [pgxpool.Pool] instances opened on demand, on top of
[postgres.NewPool]'s tunable factory.

Unlike SQLSage's own long-lived catalog pool, target-database pools are
numerous, short-lived relative to the catalog's, and opened lazily — the
registry evicts the ones nobody has touched in a while and tracks per-pool
health/usage statistics. It places no cap on how many pools are open at once.
*/
package dbregistry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sqlsage/sqlsage/internal/platform/apperr"
	"github.com/sqlsage/sqlsage/internal/platform/config"
	"github.com/sqlsage/sqlsage/internal/platform/postgres"
	"github.com/sqlsage/sqlsage/internal/schema"
)

// Stats is a point-in-time view of one pool's health and usage, per
// spec.md §4.11's "per-pool statistics".
type Stats struct {
	CreatedAt         time.Time
	TotalAcquisitions int64
	InUse             int64
	Failures          int64
	LastUsed          time.Time
}

// entry is one registry-managed pool plus its mutable statistics.
type entry struct {
	mu                sync.Mutex
	pool              *pgxpool.Pool
	createdAt         time.Time
	totalAcquisitions int64
	inUse             int64
	failures          int64
	lastUsed          time.Time
}

func (e *entry) snapshot() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		CreatedAt:         e.createdAt,
		TotalAcquisitions: e.totalAcquisitions,
		InUse:             e.inUse,
		Failures:          e.failures,
		LastUsed:          e.lastUsed,
	}
}

// Registry is the Connection Pool (C11). Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	pools   map[string]*entry
	cfg     config.PoolConfig
	logger  *slog.Logger
}

// New constructs an empty Registry tuned by cfg.
func New(cfg config.PoolConfig, logger *slog.Logger) *Registry {
	return &Registry{
		pools:  make(map[string]*entry),
		cfg:    cfg,
		logger: logger,
	}
}

// Acquire returns a live, pre-pinged pool for databaseID, opening one
// against conn if none exists yet. A pool that fails its pre-ping health
// check is closed and reopened once before the acquisition is reported as
// failed, per spec.md §4.11's "SELECT 1 pre-ping on acquisition".
func (r *Registry) Acquire(ctx context.Context, databaseID string, conn schema.ConnectionInfo) (*pgxpool.Pool, error) {
	r.mu.RLock()
	e, ok := r.pools[databaseID]
	r.mu.RUnlock()

	if ok {
		if err := ping(ctx, e.pool, r.cfg.AcquireTimeout); err == nil {
			r.touch(e)
			return e.pool, nil
		}
		r.logger.Warn("dbregistry: pre-ping failed, reopening pool", "database", databaseID)
		e.mu.Lock()
		e.failures++
		e.mu.Unlock()
		r.closeEntry(databaseID, e)
	}

	return r.open(ctx, databaseID, conn)
}

func (r *Registry) open(ctx context.Context, databaseID string, conn schema.ConnectionInfo) (*pgxpool.Pool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.pools[databaseID]; ok {
		r.touch(e)
		return e.pool, nil
	}

	poolCfg := postgres.DefaultTargetPoolConfig(r.cfg.StatementTimeout)
	poolCfg.MaxConns = int32(r.cfg.PoolSize + r.cfg.MaxOverflow)
	poolCfg.MaxConnIdleTime = r.cfg.IdleTimeout
	poolCfg.ConnectTimeout = r.cfg.AcquireTimeout

	dsn := buildDSN(conn)
	pool, err := postgres.NewPool(ctx, dsn, poolCfg, r.logger)
	if err != nil {
		return nil, apperr.ConnectionFailed(err)
	}

	e := &entry{pool: pool, createdAt: time.Now(), lastUsed: time.Now()}
	r.pools[databaseID] = e
	r.touch(e)
	return pool, nil
}

func (r *Registry) touch(e *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.totalAcquisitions++
	e.inUse++
	e.lastUsed = time.Now()
}

// Release records that a caller is done with a pool acquired via Acquire.
// It never closes the pool — pools are only closed by [Registry.Close] or
// idle eviction.
func (r *Registry) Release(databaseID string) {
	r.mu.RLock()
	e, ok := r.pools[databaseID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inUse > 0 {
		e.inUse--
	}
}

// Stats returns databaseID's current pool statistics, if a pool is open.
func (r *Registry) Stats(databaseID string) (Stats, bool) {
	r.mu.RLock()
	e, ok := r.pools[databaseID]
	r.mu.RUnlock()
	if !ok {
		return Stats{}, false
	}
	return e.snapshot(), true
}

// Close closes databaseID's pool, if one is open. Closing a pool closes
// every handle it issued.
func (r *Registry) Close(databaseID string) {
	r.mu.Lock()
	e, ok := r.pools[databaseID]
	if ok {
		delete(r.pools, databaseID)
	}
	r.mu.Unlock()
	if ok {
		e.pool.Close()
	}
}

func (r *Registry) closeEntry(databaseID string, e *entry) {
	r.mu.Lock()
	if cur, ok := r.pools[databaseID]; ok && cur == e {
		delete(r.pools, databaseID)
	}
	r.mu.Unlock()
	e.pool.Close()
}

// CloseAll closes every pool the registry currently holds, used on
// graceful shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	pools := r.pools
	r.pools = make(map[string]*entry)
	r.mu.Unlock()
	for _, e := range pools {
		e.pool.Close()
	}
}

// EvictIdle closes every pool with zero in-flight acquisitions whose
// lastUsed exceeds the registry's configured idle timeout. Intended to run
// periodically from a background goroutine started at startup.
func (r *Registry) EvictIdle() {
	cutoff := time.Now().Add(-r.cfg.IdleTimeout)

	r.mu.Lock()
	var toClose []*pgxpool.Pool
	for databaseID, e := range r.pools {
		e.mu.Lock()
		idle := e.inUse == 0 && e.lastUsed.Before(cutoff)
		e.mu.Unlock()
		if idle {
			toClose = append(toClose, e.pool)
			delete(r.pools, databaseID)
		}
	}
	r.mu.Unlock()

	for _, pool := range toClose {
		pool.Close()
	}
}

// RunIdleEviction runs [Registry.EvictIdle] every interval until ctx is
// cancelled. Intended to be started once as a background goroutine.
func (r *Registry) RunIdleEviction(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EvictIdle()
		}
	}
}

func ping(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var one int
	return pool.QueryRow(pingCtx, "SELECT 1").Scan(&one)
}
