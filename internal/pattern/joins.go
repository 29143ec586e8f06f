// Copyright (c) 2026 SQLSage. All rights reserved.

package pattern

import "regexp"

// JoinTag names the JOIN/GROUP BY template the SQL-generation stage (C8)
// should pick for a detected complex-join construct.
type JoinTag string

const (
	JoinMaxAggregation        JoinTag = "max_aggregation"
	JoinPerGroup              JoinTag = "per_group"
	JoinSegmentBreakdown      JoinTag = "segment_breakdown"
	JoinPerformanceAnalysis   JoinTag = "performance_analysis"
	JoinRevenueSourceAnalysis JoinTag = "revenue_source_analysis"
)

type joinPattern struct {
	pattern *regexp.Regexp
	tag     JoinTag
}

var joinPatterns = []joinPattern{
	{regexp.MustCompile(`en\s+fazla\s+(\S+)\s+veren\s+(\S+)`), JoinMaxAggregation},
	{regexp.MustCompile(`gelir\s+kaynagi\s+analizi`), JoinRevenueSourceAnalysis},
	{regexp.MustCompile(`(\S+)\s+basina\s+(\S+)`), JoinPerGroup},
	{regexp.MustCompile(`segment\s+bazinda\s+(\S+)`), JoinSegmentBreakdown},
	{regexp.MustCompile(`(\S+)\s+performans\s+analizi`), JoinPerformanceAnalysis},
}

// ComplexJoin is a detected multi-entity construct that implies a JOIN and a
// GROUP BY, per spec.md §4.7.
type ComplexJoin struct {
	Tag   JoinTag
	Found bool
}

// detectComplexJoin checks joinPatterns in order and returns the first match.
func detectComplexJoin(n Normalized) ComplexJoin {
	for _, p := range joinPatterns {
		if p.pattern.MatchString(n.ASCII) {
			return ComplexJoin{Tag: p.tag, Found: true}
		}
	}
	return ComplexJoin{}
}
