// Copyright (c) 2026 SQLSage. All rights reserved.

package pattern

import "regexp"

// Conversational flags whether a query depends on prior conversational
// context (a follow-up, not a standalone question) and, when it does,
// offers a hint for how the caller might expand it.
type Conversational struct {
	ContextDependent bool
	ExpansionHint    string
}

type conversationalCue struct {
	pattern *regexp.Regexp
	hint    string
}

var conversationalCues = []conversationalCue{
	{regexp.MustCompile(`\bpeki\b`), "continue from the previous result"},
	{regexp.MustCompile(`bunun\s+detayi`), "expand the previous result with more columns"},
	{regexp.MustCompile(`daha\s+fazla\s+bilgi`), "expand the previous result with more columns"},
	{regexp.MustCompile(`\bkarsilastir`), "compare against the previous result"},
	{regexp.MustCompile(`\bneden\b`), "explain the previous result"},
	{regexp.MustCompile(`\btrend\b`), "show the previous result over time"},
	{regexp.MustCompile(`\b(bunu|bunlar|sunu|onu|bu|su|o)\b`), "resolve the pronoun against the previous result"},
}

// detectConversational checks conversationalCues in order and returns the
// first match; the caller (C9) is responsible for actually resolving the
// referenced prior result.
func detectConversational(n Normalized) Conversational {
	for _, c := range conversationalCues {
		if c.pattern.MatchString(n.ASCII) {
			return Conversational{ContextDependent: true, ExpansionHint: c.hint}
		}
	}
	return Conversational{}
}
