// Copyright (c) 2026 SQLSage. All rights reserved.

package learning

import "strings"

// classifyPattern infers a captured pattern's [PatternKind] from its SQL
// shape, used when a caller does not already know the originating intent.
func classifyPattern(sql string) PatternKind {
	upper := strings.ToUpper(sql)
	switch {
	case strings.Contains(upper, "COUNT("):
		return PatternCount
	case strings.Contains(upper, "SELECT *"):
		return PatternSelectAll
	case strings.Contains(upper, "SUM("), strings.Contains(upper, "AVG("),
		strings.Contains(upper, "MAX("), strings.Contains(upper, "MIN("),
		strings.Contains(upper, "GROUP BY"):
		return PatternAggregation
	default:
		return PatternLearned
	}
}

// turkishKeywords picks out tokens from text that contain a Turkish-specific
// character, used to tag a captured pattern for later bilingual matching.
func turkishKeywords(text string) []string {
	const turkishChars = "çğıöşüÇĞİÖŞÜ"
	var out []string
	for _, tok := range strings.Fields(text) {
		if strings.ContainsAny(tok, turkishChars) {
			out = append(out, strings.ToLower(tok))
		}
	}
	return out
}
