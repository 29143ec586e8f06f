// Copyright (c) 2026 SQLSage. All rights reserved.

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlsage/sqlsage/internal/querymodel"
)

func TestExtractIntentJSON_PlainObject(t *testing.T) {
	intent, ok := extractIntentJSON(`{"intent":"count","entities":["orders"],"filters":{"name":"ahmet"}}`)
	assert.True(t, ok)
	assert.Equal(t, querymodel.IntentCount, intent.Operation)
	assert.Equal(t, []string{"orders"}, intent.Entities)
	assert.Contains(t, intent.Filters, "name: ahmet")
}

func TestExtractIntentJSON_FencedBlock(t *testing.T) {
	resp := "Here you go:\n```json\n{\"intent\": \"sum\", \"entities\": [\"payments\"]}\n```"
	intent, ok := extractIntentJSON(resp)
	assert.True(t, ok)
	assert.Equal(t, querymodel.IntentSum, intent.Operation)
}

func TestExtractIntentJSON_EmbeddedObjectWithTrailingText(t *testing.T) {
	resp := `Sure, the intent is {"intent": "select", "entities": ["customers"]} as requested.`
	intent, ok := extractIntentJSON(resp)
	assert.True(t, ok)
	assert.Equal(t, querymodel.IntentSelect, intent.Operation)
	assert.Equal(t, []string{"customers"}, intent.Entities)
}

func TestExtractIntentJSON_UnrecognizedKindDefaultsToSelect(t *testing.T) {
	intent, ok := extractIntentJSON(`{"intent": "top_n", "entities": ["orders"]}`)
	assert.True(t, ok)
	assert.Equal(t, querymodel.IntentSelect, intent.Operation)
}

func TestExtractIntentJSON_BraceInsideStringDoesNotBreakBalance(t *testing.T) {
	resp := `Result: {"intent": "select", "filters": {"name": "a{b}c"}}`
	intent, ok := extractIntentJSON(resp)
	assert.True(t, ok)
	assert.Contains(t, intent.Filters, "name: a{b}c")
}

func TestExtractIntentJSON_NoObjectFails(t *testing.T) {
	_, ok := extractIntentJSON("I cannot help with that.")
	assert.False(t, ok)
}

func TestExtractIntentJSON_MissingIntentFieldFails(t *testing.T) {
	_, ok := extractIntentJSON(`{"entities": ["orders"]}`)
	assert.False(t, ok)
}
