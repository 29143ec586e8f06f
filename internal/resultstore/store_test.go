// Copyright (c) 2026 SQLSage. All rights reserved.

package resultstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlsage/sqlsage/internal/platform/apperr"
	"github.com/sqlsage/sqlsage/internal/querymodel"
)

func sampleResult(id string, retainedUntil time.Time) querymodel.QueryResult {
	return querymodel.QueryResult{
		QueryID: id,
		Rows: []querymodel.Row{
			{"id": 1}, {"id": 2}, {"id": 3},
		},
		RowCount:      3,
		Truncated:     false,
		RetainedUntil: retainedUntil,
	}
}

func TestStore_PutThenGetReturnsAllRows(t *testing.T) {
	s := New()
	s.Put(sampleResult("q1", time.Now().Add(time.Hour)))

	rows, count, truncated, err := s.Get("q1", 0, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, 3, count)
	assert.False(t, truncated)
}

func TestStore_GetPaginatesByOffsetAndLimit(t *testing.T) {
	s := New()
	s.Put(sampleResult("q1", time.Now().Add(time.Hour)))

	rows, count, _, err := s.Get("q1", 1, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0]["id"])
	assert.Equal(t, 3, count)
}

func TestStore_GetOffsetPastEndReturnsEmptySlice(t *testing.T) {
	s := New()
	s.Put(sampleResult("q1", time.Now().Add(time.Hour)))

	rows, count, _, err := s.Get("q1", 100, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 3, count)
}

func TestStore_GetZeroLimitReturnsFromOffsetToEnd(t *testing.T) {
	s := New()
	s.Put(sampleResult("q1", time.Now().Add(time.Hour)))

	rows, _, _, err := s.Get("q1", 1, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestStore_GetUnknownQueryIDReturnsNotFound(t *testing.T) {
	s := New()
	_, _, _, err := s.Get("missing", 0, 10)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.KindNotFound, ae.Kind)
}

func TestStore_GetExpiredResultReturnsNotFound(t *testing.T) {
	s := New()
	s.Put(sampleResult("q1", time.Now().Add(-time.Minute)))

	_, _, _, err := s.Get("q1", 0, 10)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.KindNotFound, ae.Kind)
}

func TestStore_EvictExpiredRemovesOnlyLapsedEntries(t *testing.T) {
	s := New()
	s.Put(sampleResult("expired", time.Now().Add(-time.Minute)))
	s.Put(sampleResult("fresh", time.Now().Add(time.Hour)))

	evicted := s.EvictExpired(time.Now())
	assert.Equal(t, 1, evicted)

	_, _, _, err := s.Get("fresh", 0, 10)
	assert.NoError(t, err)

	_, _, _, err = s.Get("expired", 0, 10)
	assert.Error(t, err)
}

func TestStore_DeleteRemovesResultImmediately(t *testing.T) {
	s := New()
	s.Put(sampleResult("q1", time.Now().Add(time.Hour)))
	s.Delete("q1")

	_, _, _, err := s.Get("q1", 0, 10)
	assert.Error(t, err)
}

func TestStore_PutOverwritesPriorResultForSameID(t *testing.T) {
	s := New()
	s.Put(sampleResult("q1", time.Now().Add(time.Hour)))
	replacement := sampleResult("q1", time.Now().Add(time.Hour))
	replacement.Rows = []querymodel.Row{{"id": 99}}
	replacement.RowCount = 1
	s.Put(replacement)

	rows, count, _, err := s.Get("q1", 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 99, rows[0]["id"])
	assert.Equal(t, 1, count)
}
