// Copyright (c) 2026 SQLSage. All rights reserved.

package learning

import (
	"sort"
	"strings"
)

// matchThreshold is the minimum Jaccard similarity for a learned pattern to
// count as a match against a new query (spec.md §4.6).
const matchThreshold = 0.30

// defaultSimilarK is the top-k used when a caller does not need a custom k.
const defaultSimilarK = 5

// tokenize lowercases and splits on whitespace, deduplicating into a set —
// the Jaccard similarity's unit of comparison.
func tokenize(text string) map[string]bool {
	set := map[string]bool{}
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		set[tok] = true
	}
	return set
}

// jaccardSimilarity is |intersection| / |union| over two token sets.
func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

type scoredPattern struct {
	pattern Pattern
	score   float64
}

// similarPatterns ranks patterns against query by Jaccard similarity over
// lowercased whitespace tokens, keeps matches >= matchThreshold, and
// returns the top k.
func similarPatterns(patterns []Pattern, query string, k int) []Pattern {
	if k <= 0 {
		k = defaultSimilarK
	}
	queryTokens := tokenize(query)

	scored := make([]scoredPattern, 0, len(patterns))
	for _, p := range patterns {
		score := jaccardSimilarity(queryTokens, tokenize(p.OriginalText))
		if score >= matchThreshold {
			scored = append(scored, scoredPattern{pattern: p, score: score})
		}
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > k {
		scored = scored[:k]
	}

	out := make([]Pattern, len(scored))
	for i, s := range scored {
		out[i] = s.pattern
	}
	return out
}
