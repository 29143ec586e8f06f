// Copyright (c) 2026 SQLSage. All rights reserved.

package learning

import (
	"fmt"
	"strings"
)

// formatContext renders a record's matches against query into the compact
// adaptive-context text C8 folds into its prompts.
func formatContext(record *Record, query string) string {
	matches := similarPatterns(record.Patterns, query, defaultSimilarK)
	if len(matches) == 0 && len(record.BilingualMappings) == 0 {
		return ""
	}

	var b strings.Builder
	if len(matches) > 0 {
		b.WriteString("Learned patterns:\n")
		for _, p := range matches {
			fmt.Fprintf(&b, "- %q -> %s (%s, confidence %.2f)\n", p.OriginalText, p.SQL, p.Kind, p.Confidence)
		}
	}

	if hints := bilingualHints(record.BilingualMappings, query); len(hints) > 0 {
		b.WriteString("Bilingual hints: ")
		b.WriteString(strings.Join(hints, ", "))
		b.WriteString("\n")
	}

	return b.String()
}

// bilingualHints returns "en=tr" pairs whose English or Turkish side appears
// in query, so C8's prompt only carries mappings relevant to this request.
func bilingualHints(mappings map[string]string, query string) []string {
	lower := strings.ToLower(query)
	var hints []string
	for en, tr := range mappings {
		if strings.Contains(lower, en) || strings.Contains(lower, tr) {
			hints = append(hints, en+"="+tr)
		}
	}
	return hints
}
