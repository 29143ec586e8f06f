// Copyright (c) 2026 SQLSage. All rights reserved.

// Package pattern implements the Pattern Detector (C7): a pure,
// no-I/O function from normalized query text to a structured set of
// enrichments (name/date filters, join hints, conversational flags,
// analytics tags) layered onto the Intent produced by C8.
package pattern

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalized holds the three views of a query text that every detector in
// this package reads from: the verbatim original (kept for display), a
// lowercased form with Turkish aggregate phrases folded to bracketed
// placeholders, and an ASCII-folded form used for Turkish/English matching.
type Normalized struct {
	Original string
	Lower    string
	ASCII    string
}

// aggregatePhrase maps a Turkish aggregate phrase (matched case-insensitively,
// as a regexp) to its bracketed placeholder.
type aggregatePhrase struct {
	pattern     *regexp.Regexp
	placeholder string
}

var aggregatePhrases = []aggregatePhrase{
	{regexp.MustCompile(`en\s+çok`), "[MAX]"},
	{regexp.MustCompile(`en\s+az`), "[MIN]"},
	{regexp.MustCompile(`toplam`), "[SUM]"},
	{regexp.MustCompile(`ortalama`), "[AVG]"},
	{regexp.MustCompile(`sayısı|sayı|adet`), "[COUNT]"},
}

// Normalize lowercases text, folds its Turkish aggregate phrases to bracketed
// placeholders, and produces an ASCII-folded form for matching — the
// original string is always preserved for display.
func Normalize(text string) Normalized {
	lower := strings.ToLower(text)
	for _, p := range aggregatePhrases {
		lower = p.pattern.ReplaceAllString(lower, p.placeholder)
	}
	return Normalized{
		Original: text,
		Lower:    lower,
		ASCII:    foldTurkish(lower),
	}
}

// foldTurkish maps Turkish-specific characters to their closest ASCII
// equivalent for matching, reusing the accent-stripping transform pipeline
// (NFD decomposition + combining-mark removal) for ç/ö/ü/ş/ğ, which all
// canonically decompose into a base letter plus a combining mark. The
// dotless ı has no such decomposition, so it is folded explicitly.
func foldTurkish(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.NewReplacer("ı", "i", "İ", "i").Replace(result)
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// containsTurkishChar reports whether token contains a character specific to
// Turkish orthography, used by the name filter to accept unrecognized names.
func containsTurkishChar(token string) bool {
	const turkishChars = "çğıöşüÇĞİÖŞÜ"
	return strings.ContainsAny(token, turkishChars)
}
