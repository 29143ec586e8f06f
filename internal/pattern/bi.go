// Copyright (c) 2026 SQLSage. All rights reserved.

package pattern

import "regexp"

// BIAnalysis is a detected business-intelligence analytics construct.
type BIAnalysis struct {
	Tag   string
	Found bool
}

var biKeywords = regexp.MustCompile(
	`\b(ltv|churn|cohort|rfm|funnel|conversion|mrr|arr|activation|stickiness|forecast(ing)?|cagr|moving average)\b`,
)

// detectBI implements spec.md §4.7's BI-pattern recognizer: a simple
// keyword scan across the well-known analytics vocabulary.
func detectBI(n Normalized) BIAnalysis {
	if m := biKeywords.FindString(n.ASCII); m != "" {
		return BIAnalysis{Tag: m, Found: true}
	}
	return BIAnalysis{}
}
