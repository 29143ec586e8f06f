// Copyright (c) 2026 SQLSage. All rights reserved.

/*
Package resultstore implements the Result Store (C12): the bounded,
retention-windowed holding area for one completed query's rows, handed off
from the Executor (C10) and read back through the Query port's paginated
results endpoint.

It is a pure in-memory map, not a durable store — a query's rows live only
as long as its retention window, and are gone on process restart. This
mirrors how the teacher's auth package treats short-lived tokens as cache
state rather than system-of-record state, just kept in-process instead of
in Redis, since result rows are per-node and never need to be shared across
replicas.
*/
package resultstore

import (
	"sync"
	"time"

	"github.com/sqlsage/sqlsage/internal/platform/apperr"
	"github.com/sqlsage/sqlsage/internal/querymodel"
)

// Store holds every completed query's [querymodel.QueryResult] until its
// retention window lapses. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	results map[string]querymodel.QueryResult
}

// New constructs an empty Store.
func New() *Store {
	return &Store{results: make(map[string]querymodel.QueryResult)}
}

// Put retains result until result.RetainedUntil, overwriting any prior
// result for the same query id.
func (s *Store) Put(result querymodel.QueryResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.QueryID] = result
}

// Get returns up to limit rows starting at offset from queryID's retained
// result, along with the result's total row count and truncation flag.
// Returns apperr.NotFound if the query id is unknown or its retention
// window has already lapsed.
func (s *Store) Get(queryID string, offset, limit int) ([]querymodel.Row, int, bool, error) {
	s.mu.RLock()
	result, ok := s.results[queryID]
	s.mu.RUnlock()

	if !ok || time.Now().After(result.RetainedUntil) {
		return nil, 0, false, apperr.NotFound("query result " + queryID)
	}

	if offset < 0 {
		offset = 0
	}
	if offset >= len(result.Rows) {
		return []querymodel.Row{}, result.RowCount, result.Truncated, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(result.Rows) {
		end = len(result.Rows)
	}
	return result.Rows[offset:end], result.RowCount, result.Truncated, nil
}

// EvictExpired removes every result whose retention window has lapsed as
// of now. Intended to run periodically from a background goroutine, per
// spec.md §4.12's retention cleanup.
func (s *Store) EvictExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, result := range s.results {
		if now.After(result.RetainedUntil) {
			delete(s.results, id)
			evicted++
		}
	}
	return evicted
}

// Delete removes queryID's retained result immediately.
func (s *Store) Delete(queryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, queryID)
}

// RunEvictionLoop runs [Store.EvictExpired] every interval until done is
// closed. Intended to be started once as a background goroutine.
func (s *Store) RunEvictionLoop(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.EvictExpired(time.Now())
		}
	}
}
