// Copyright (c) 2026 SQLSage. All rights reserved.

package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sqlsage/sqlsage/internal/querymodel"
)

// rawIntent mirrors the small JSON object the understanding prompt asks
// the model to emit: {"intent": "...", "entities": [...], "filters": {...}}.
type rawIntent struct {
	Intent   string            `json:"intent"`
	Entities []string          `json:"entities"`
	Filters  map[string]string `json:"filters"`
}

var fencedJSONBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// intentKindByName maps every string the understanding prompt may emit for
// "intent" to its canonical [querymodel.IntentKind].
var intentKindByName = map[string]querymodel.IntentKind{
	"select":  querymodel.IntentSelect,
	"count":   querymodel.IntentCount,
	"sum":     querymodel.IntentSum,
	"total":   querymodel.IntentSum,
	"avg":     querymodel.IntentAvg,
	"average": querymodel.IntentAvg,
	"max":     querymodel.IntentMax,
	"min":     querymodel.IntentMin,
}

// extractIntentJSON tries a sequence of increasingly permissive extraction
// patterns against an LM response: the whole trimmed body as JSON, a
// fenced ```json code block, then the first balanced {...} object found
// anywhere in the text. It returns false when none of them parse.
func extractIntentJSON(response string) (querymodel.Intent, bool) {
	trimmed := strings.TrimSpace(response)

	if intent, ok := tryParseIntentJSON(trimmed); ok {
		return intent, true
	}
	if m := fencedJSONBlock.FindStringSubmatch(trimmed); m != nil {
		if intent, ok := tryParseIntentJSON(m[1]); ok {
			return intent, true
		}
	}
	if block := firstBalancedObject(trimmed); block != "" {
		if intent, ok := tryParseIntentJSON(block); ok {
			return intent, true
		}
	}
	return querymodel.Intent{}, false
}

func tryParseIntentJSON(candidate string) (querymodel.Intent, bool) {
	var raw rawIntent
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return querymodel.Intent{}, false
	}
	if raw.Intent == "" {
		return querymodel.Intent{}, false
	}
	kind, ok := intentKindByName[strings.ToLower(strings.TrimSpace(raw.Intent))]
	if !ok {
		kind = querymodel.IntentSelect
	}
	return querymodel.Intent{
		Operation: kind,
		Entities:  raw.Entities,
		Filters:   flattenFilters(raw.Filters),
	}, true
}

// flattenFilters renders a {name: value} filter map to querymodel.Intent's
// "name: value" string slice form.
func flattenFilters(filters map[string]string) []string {
	if len(filters) == 0 {
		return nil
	}
	out := make([]string, 0, len(filters))
	for name, value := range filters {
		out = append(out, name+": "+value)
	}
	return out
}

// firstBalancedObject scans s for the first brace-balanced {...} substring,
// tolerating braces nested inside quoted strings.
func firstBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// inside a quoted string, braces don't affect depth
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
