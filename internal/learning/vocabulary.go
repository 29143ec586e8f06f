// Copyright (c) 2026 SQLSage. All rights reserved.

package learning

import (
	"sort"
	"strings"
	"unicode"

	"github.com/sqlsage/sqlsage/internal/schema"
)

// extractVocabulary splits every table and column name on `_` and
// camelCase boundaries, lowercases the pieces, and keeps those longer than
// two characters, per spec.md §4.6's vocabulary definition.
func extractVocabulary(tables []schema.Table) []string {
	seen := map[string]bool{}
	for _, t := range tables {
		for _, w := range splitIdentifier(t.Name) {
			seen[w] = true
		}
		for _, c := range t.Columns {
			for _, w := range splitIdentifier(c.Name) {
				seen[w] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// splitIdentifier breaks name on underscores and camelCase boundaries,
// returning lowercased words longer than two characters.
func splitIdentifier(name string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		w := strings.ToLower(current.String())
		if len(w) > 2 {
			words = append(words, w)
		}
		current.Reset()
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-':
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return words
}

// mergeVocabulary unions existing and fresh, keeping the learning store
// additive-only: introspection never removes a previously learned word.
func mergeVocabulary(existing, fresh []string) []string {
	seen := make(map[string]bool, len(existing)+len(fresh))
	merged := make([]string, 0, len(existing)+len(fresh))
	for _, w := range existing {
		if !seen[w] {
			seen[w] = true
			merged = append(merged, w)
		}
	}
	for _, w := range fresh {
		if !seen[w] {
			seen[w] = true
			merged = append(merged, w)
		}
	}
	sort.Strings(merged)
	return merged
}
