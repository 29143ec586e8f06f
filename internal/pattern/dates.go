// Copyright (c) 2026 SQLSage. All rights reserved.

package pattern

import (
	"fmt"
	"regexp"
)

// DateFilter is a detected relative or absolute date constraint, already
// rendered as a PostgreSQL predicate fragment.
type DateFilter struct {
	Predicate string
	Found     bool
}

var (
	reRelativeTurkish = regexp.MustCompile(`son\s+(\d+)\s+(gun|hafta|ay|yil)`)
	reRelativeEnglish = regexp.MustCompile(`last\s+(\d+)\s+(day|days|week|weeks)`)
)

var relativeUnitSQL = map[string]string{
	"gun": "days", "hafta": "weeks", "ay": "months", "yil": "years",
	"day": "days", "days": "days", "week": "weeks", "weeks": "weeks",
}

// absolutePeriod pairs an ASCII-folded literal with its PostgreSQL predicate.
type absolutePeriod struct {
	pattern   *regexp.Regexp
	predicate string
}

var absolutePeriods = []absolutePeriod{
	{regexp.MustCompile(`\bbugun\b`), "= CURRENT_DATE"},
	{regexp.MustCompile(`\bdun\b`), "= CURRENT_DATE - INTERVAL '1 day'"},
	{regexp.MustCompile(`\b(bu|this)\s+hafta\b|\bthis\s+week\b`), ">= date_trunc('week', CURRENT_DATE)"},
	{regexp.MustCompile(`\bgecen\s+hafta\b`), "BETWEEN date_trunc('week', CURRENT_DATE) - INTERVAL '1 week' AND date_trunc('week', CURRENT_DATE)"},
	{regexp.MustCompile(`\b(bu|this)\s+ay\b|\bthis\s+month\b`), ">= date_trunc('month', CURRENT_DATE)"},
	{regexp.MustCompile(`\bgecen\s+ay\b`), "BETWEEN date_trunc('month', CURRENT_DATE) - INTERVAL '1 month' AND date_trunc('month', CURRENT_DATE)"},
	{regexp.MustCompile(`\b(bu|this)\s+yil\b`), ">= date_trunc('year', CURRENT_DATE)"},
	{regexp.MustCompile(`\bgecen\s+yil\b`), "BETWEEN date_trunc('year', CURRENT_DATE) - INTERVAL '1 year' AND date_trunc('year', CURRENT_DATE)"},
}

// detectDate implements spec.md §4.7's date filter: relative patterns are
// tried first, then absolute periods; the first match wins.
func detectDate(n Normalized) DateFilter {
	if m := reRelativeTurkish.FindStringSubmatch(n.ASCII); m != nil {
		return DateFilter{Predicate: relativePredicate(m[1], m[2]), Found: true}
	}
	if m := reRelativeEnglish.FindStringSubmatch(n.ASCII); m != nil {
		return DateFilter{Predicate: relativePredicate(m[1], m[2]), Found: true}
	}
	for _, p := range absolutePeriods {
		if p.pattern.MatchString(n.ASCII) {
			return DateFilter{Predicate: p.predicate, Found: true}
		}
	}
	return DateFilter{}
}

func relativePredicate(amount, unit string) string {
	return fmt.Sprintf(">= CURRENT_DATE - INTERVAL '%s %s'", amount, relativeUnitSQL[unit])
}
