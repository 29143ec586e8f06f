// Package constants provides centralized, immutable values shared across
// SQLSage's HTTP transport, pipeline components, and catalog persistence.
//
// Using this package ensures magic strings and magic numbers are eliminated
// from business logic.
package constants

import "time"

// # Metadata

const (
	AppName    = "sqlsage"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// Progress-port SSE connections are exempt (see internal/api/progress.go).
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle, except
	// for long-running query submissions which manage their own context.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # Catalog Schemas

const (
	// SchemaCatalog holds SQLSage's own bookkeeping tables (registry, snapshots,
	// query history, learning records) — distinct from the schemas of the
	// target databases being introspected and queried.
	SchemaCatalog = "sqlsage"
)

// # Redis Key Prefixes (Adaptive Learning front-cache)

const (
	RedisPrefixVocabulary = "learn:vocab:"
	RedisPrefixMappings   = "learn:map:"
	RedisPrefixPattern    = "learn:pattern:"
)

// # Adaptive Learning TTLs (spec.md §6 minimums)

const (
	LearningPatternTTL    = 7 * 24 * time.Hour
	LearningVocabularyTTL = 30 * 24 * time.Hour
)

// # Vector Index

const (
	// VectorCollectionPrefix is a name prefix for a per-database context
	// collection. The vector store does not use it: it keeps every database's
	// items in the single vec_items table, keyed by database_id.
	VectorCollectionPrefix = "sqlsage_ctx_"

	// EmbeddingCacheSize bounds the in-process LRU in front of the embedding
	// API, keyed by input text.
	EmbeddingCacheSize = 1000
)

// # Background Loop Intervals

const (
	// IdleEvictionInterval is how often the connection pool registry (C11)
	// sweeps for idle target-database pools to close.
	IdleEvictionInterval = 5 * time.Minute

	// ResultEvictionInterval is how often the result store (C12) sweeps for
	// lapsed retention windows.
	ResultEvictionInterval = 10 * time.Minute

	// QueryCleanupInterval is how often the executor (C10) sweeps completed
	// queries older than QueryCleanupMaxAge out of memory.
	QueryCleanupInterval = 10 * time.Minute

	// QueryCleanupMaxAge is how long a terminal query's bookkeeping record is
	// kept in memory after completion, independent of its result retention.
	QueryCleanupMaxAge = 48 * time.Hour
)
