// Copyright (c) 2026 SQLSage. All rights reserved.

package learning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sqlsage/sqlsage/internal/catalogschema"
	"github.com/sqlsage/sqlsage/internal/platform/apperr"
	"github.com/sqlsage/sqlsage/internal/platform/dberr"
	"github.com/sqlsage/sqlsage/internal/schema"
)

// recordSuccessThreshold is the minimum confidence at which a query is
// captured as a reusable pattern (spec.md §4.6).
const recordSuccessThreshold = 0.7

// Front-cache TTLs: patterns churn fastest so they expire sooner; vocabulary
// and bilingual mappings are near-static once a database has been analyzed
// a few times (SPEC_FULL.md §7 "Persisted state layout").
const (
	patternsTTL = 7 * 24 * time.Hour
	vocabTTL    = 30 * 24 * time.Hour
)

type postgresStore struct {
	pool  *pgxpool.Pool
	cache *goredis.Client
}

// NewPostgresStore builds a [Store] backed by SQLSage's catalog database,
// front-cached in redis for the read-heavy ContextFor/SimilarPatterns path.
func NewPostgresStore(pool *pgxpool.Pool, cache *goredis.Client) Store {
	return &postgresStore{pool: pool, cache: cache}
}

func (s *postgresStore) Initialize(ctx context.Context, databaseID string, full schema.FullSchema) error {
	existing, err := s.getFromDB(ctx, databaseID)
	if err != nil && !errors.Is(err, errRecordNotFound) {
		return err
	}

	fresh := extractVocabulary(full.Tables)
	record := &Record{
		DatabaseID:        databaseID,
		Vocabulary:        fresh,
		BilingualMappings: seedBilingualMappings(),
	}
	if existing != nil {
		record.Vocabulary = mergeVocabulary(existing.Vocabulary, fresh)
		record.BilingualMappings = extendBilingual(existing.BilingualMappings, seedBilingualMappings())
		record.Patterns = existing.Patterns
		record.Metrics = existing.Metrics
	}
	record.Metrics.VocabularySize = len(record.Vocabulary)

	if err := s.upsert(ctx, record); err != nil {
		return err
	}
	s.cacheVocab(ctx, record)
	s.cachePatterns(ctx, record)
	return nil
}

func (s *postgresStore) RecordSuccess(ctx context.Context, databaseID, query, sql string, confidence float64) error {
	record, err := s.getFromDB(ctx, databaseID)
	if err != nil {
		if errors.Is(err, errRecordNotFound) {
			record = &Record{DatabaseID: databaseID, BilingualMappings: seedBilingualMappings()}
		} else {
			return err
		}
	}

	record.Metrics.TotalQueries++
	record.Metrics.SuccessfulQueries++

	if confidence >= recordSuccessThreshold {
		record.Patterns = append(record.Patterns, Pattern{
			OriginalText:    query,
			SQL:             sql,
			Kind:            classifyPattern(sql),
			TurkishKeywords: turkishKeywords(query),
			Confidence:      confidence,
		})
		record.Metrics.LearnedPatterns++
	}
	record.Metrics.VocabularySize = len(record.Vocabulary)

	if err := s.upsert(ctx, record); err != nil {
		return err
	}
	s.cachePatterns(ctx, record)
	return nil
}

func (s *postgresStore) ContextFor(ctx context.Context, databaseID, query string) (string, error) {
	record, err := s.getCachedOrDB(ctx, databaseID)
	if err != nil {
		if errors.Is(err, errRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return formatContext(record, query), nil
}

func (s *postgresStore) SimilarPatterns(ctx context.Context, databaseID, query string, k int) ([]Pattern, error) {
	record, err := s.getCachedOrDB(ctx, databaseID)
	if err != nil {
		if errors.Is(err, errRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return similarPatterns(record.Patterns, query, k), nil
}

func (s *postgresStore) Metrics(ctx context.Context, databaseID string) (Metrics, error) {
	record, err := s.getFromDB(ctx, databaseID)
	if err != nil {
		if errors.Is(err, errRecordNotFound) {
			return Metrics{}, nil
		}
		return Metrics{}, err
	}
	return record.Metrics, nil
}

// errRecordNotFound is the sentinel used internally when a database has no
// learning record yet — not a caller-facing error.
var errRecordNotFound = errors.New("learning: record not found")

func (s *postgresStore) getFromDB(ctx context.Context, databaseID string) (*Record, error) {
	t := catalogschema.LearningRecordsTable
	querySQL := fmt.Sprintf(
		`SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		t.Vocabulary, t.BilingualMappings, t.Patterns, t.Metrics, t.UpdatedAt, t.Name, t.DatabaseID,
	)

	var vocabJSON, mappingsJSON, patternsJSON, metricsJSON []byte
	var updatedAt time.Time
	err := s.pool.QueryRow(ctx, querySQL, databaseID).Scan(&vocabJSON, &mappingsJSON, &patternsJSON, &metricsJSON, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errRecordNotFound
	}
	if err != nil {
		return nil, dberr.Wrap(err, "learning_get")
	}

	record := &Record{DatabaseID: databaseID, UpdatedAt: updatedAt}
	if err := unmarshalAll(vocabJSON, mappingsJSON, patternsJSON, metricsJSON, record); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "learning: decode record", err)
	}
	return record, nil
}

func (s *postgresStore) upsert(ctx context.Context, record *Record) error {
	t := catalogschema.LearningRecordsTable

	vocabJSON, err := json.Marshal(record.Vocabulary)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "learning: encode vocabulary", err)
	}
	mappingsJSON, err := json.Marshal(record.BilingualMappings)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "learning: encode bilingual mappings", err)
	}
	patternsJSON, err := json.Marshal(record.Patterns)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "learning: encode patterns", err)
	}
	metricsJSON, err := json.Marshal(record.Metrics)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "learning: encode metrics", err)
	}

	upsertSQL := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2::jsonb, $3::jsonb, $4::jsonb, $5::jsonb, now())
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s
	`,
		t.Name, t.DatabaseID, t.Vocabulary, t.BilingualMappings, t.Patterns, t.Metrics, t.UpdatedAt,
		t.DatabaseID,
		t.Vocabulary, t.Vocabulary, t.BilingualMappings, t.BilingualMappings,
		t.Patterns, t.Patterns, t.Metrics, t.Metrics, t.UpdatedAt, t.UpdatedAt,
	)
	if _, err := s.pool.Exec(ctx, upsertSQL, record.DatabaseID, vocabJSON, mappingsJSON, patternsJSON, metricsJSON); err != nil {
		return dberr.Wrap(err, "learning_upsert")
	}
	return nil
}

func unmarshalAll(vocabJSON, mappingsJSON, patternsJSON, metricsJSON []byte, record *Record) error {
	if err := json.Unmarshal(vocabJSON, &record.Vocabulary); err != nil {
		return err
	}
	if err := json.Unmarshal(mappingsJSON, &record.BilingualMappings); err != nil {
		return err
	}
	if err := json.Unmarshal(patternsJSON, &record.Patterns); err != nil {
		return err
	}
	return json.Unmarshal(metricsJSON, &record.Metrics)
}

// getCachedOrDB serves vocabulary/mappings/patterns from redis when present,
// falling back to Postgres (and repopulating the cache) on a miss.
func (s *postgresStore) getCachedOrDB(ctx context.Context, databaseID string) (*Record, error) {
	vocab, mappings, vocabHit := s.getCachedVocab(ctx, databaseID)
	patterns, patternsHit := s.getCachedPatterns(ctx, databaseID)
	if vocabHit && patternsHit {
		return &Record{DatabaseID: databaseID, Vocabulary: vocab, BilingualMappings: mappings, Patterns: patterns}, nil
	}

	record, err := s.getFromDB(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	s.cacheVocab(ctx, record)
	s.cachePatterns(ctx, record)
	return record, nil
}

func vocabCacheKey(databaseID string) string    { return "learning:vocab:" + databaseID }
func patternsCacheKey(databaseID string) string { return "learning:patterns:" + databaseID }

func (s *postgresStore) cacheVocab(ctx context.Context, record *Record) {
	payload, err := json.Marshal(struct {
		Vocabulary []string
		Mappings   map[string]string
	}{record.Vocabulary, record.BilingualMappings})
	if err != nil {
		return
	}
	s.cache.Set(ctx, vocabCacheKey(record.DatabaseID), payload, vocabTTL)
}

func (s *postgresStore) getCachedVocab(ctx context.Context, databaseID string) ([]string, map[string]string, bool) {
	raw, err := s.cache.Get(ctx, vocabCacheKey(databaseID)).Bytes()
	if err != nil {
		return nil, nil, false
	}
	var decoded struct {
		Vocabulary []string
		Mappings   map[string]string
	}
	if json.Unmarshal(raw, &decoded) != nil {
		return nil, nil, false
	}
	return decoded.Vocabulary, decoded.Mappings, true
}

func (s *postgresStore) cachePatterns(ctx context.Context, record *Record) {
	payload, err := json.Marshal(record.Patterns)
	if err != nil {
		return
	}
	s.cache.Set(ctx, patternsCacheKey(record.DatabaseID), payload, patternsTTL)
}

func (s *postgresStore) getCachedPatterns(ctx context.Context, databaseID string) ([]Pattern, bool) {
	raw, err := s.cache.Get(ctx, patternsCacheKey(databaseID)).Bytes()
	if err != nil {
		return nil, false
	}
	var patterns []Pattern
	if json.Unmarshal(raw, &patterns) != nil {
		return nil, false
	}
	return patterns, true
}
