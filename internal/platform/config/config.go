// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (pipeline, storage) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the SQLSage query engine.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// CatalogDatabaseURL is SQLSage's own bookkeeping database (registry,
	// snapshots, query history, learning records) — never a target database.
	CatalogDatabaseURL string `env:"CATALOG_DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the catalog schema's SQL
	// migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis) — the Adaptive Learning Store's front-cache.
	RedisURL string `env:"REDIS_URL,required"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	Pool      PoolConfig
	Executor  ExecutorConfig
	LM        LMConfig
	Retrieval RetrievalConfig
	Safety    SafetyConfig
}

// PoolConfig tunes pools opened by the connection pool registry (C11) for
// target databases. It governs per-database pools, not the catalog pool,
// which the teacher's opinionated internal/platform/postgres defaults cover.
type PoolConfig struct {
	PoolSize         int           `env:"POOL_SIZE" envDefault:"10"`
	MaxOverflow      int           `env:"POOL_MAX_OVERFLOW" envDefault:"5"`
	AcquireTimeout   time.Duration `env:"POOL_TIMEOUT_SECONDS" envDefault:"10s"`
	StatementTimeout time.Duration `env:"STATEMENT_TIMEOUT_MS" envDefault:"30000ms"`
	IdleTimeout      time.Duration `env:"IDLE_TIMEOUT_MINUTES" envDefault:"30m"`
}

// ExecutorConfig tunes the async executor (C10).
type ExecutorConfig struct {
	FetchSize       int           `env:"FETCH_SIZE" envDefault:"10000"`
	MaxRowsPerQuery int           `env:"MAX_ROWS_PER_QUERY" envDefault:"100000"`
	ResultRetention time.Duration `env:"RESULT_RETENTION_HOURS" envDefault:"24h"`
}

// LMConfig configures the language model adapter (C8). It is deliberately
// vendor-agnostic: the core only sees the internal/llm.LanguageModel
// interface, never this struct, which is wired once at startup.
type LMConfig struct {
	ModelUnderstand       string        `env:"LM_MODEL_UNDERSTAND" envDefault:"gpt-4o-mini"`
	ModelSQL              string        `env:"LM_MODEL_SQL" envDefault:"gpt-4o-mini"`
	TemperatureUnderstand float64       `env:"LM_TEMPERATURE_UNDERSTAND" envDefault:"0.1"`
	TemperatureSQL        float64       `env:"LM_TEMPERATURE_SQL" envDefault:"0.0"`
	TopP                  float64       `env:"LM_TOP_P" envDefault:"0.95"`
	Timeout               time.Duration `env:"LM_TIMEOUT_SECONDS" envDefault:"30s"`
	MaxTokensUnderstand   int           `env:"LM_MAX_TOKENS_UNDERSTAND" envDefault:"300"`
	MaxTokensSQL          int           `env:"LM_MAX_TOKENS_SQL" envDefault:"100"`
	APIKey                string        `env:"LM_API_KEY"`
}

// RetrievalConfig tunes the vector context index (C5) and its contribution
// to query interpretation ranking (C9).
type RetrievalConfig struct {
	ContextK             int     `env:"RETRIEVAL_CONTEXT_K" envDefault:"20"`
	SimilarityThreshold  float64 `env:"RETRIEVAL_SIMILARITY_THRESHOLD" envDefault:"1.0"`
	ColumnMatchThreshold float64 `env:"RETRIEVAL_COLUMN_MATCH_THRESHOLD" envDefault:"0.4"`
	TableMatchThreshold  float64 `env:"RETRIEVAL_TABLE_MATCH_THRESHOLD" envDefault:"0.3"`
}

// SafetyConfig tunes the safety validator (C1).
type SafetyConfig struct {
	AllowedOperations []string `env:"SAFETY_ALLOWED_OPERATIONS" envSeparator:"," envDefault:"select"`
	MaxSQLLength      int      `env:"SAFETY_MAX_SQL_LENGTH" envDefault:"100000"`
	MaxPromptLength   int      `env:"SAFETY_MAX_PROMPT_LENGTH" envDefault:"1000"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
