// Copyright (c) 2026 SQLSage. All rights reserved.

package llm

import (
	"regexp"
	"strings"
)

var (
	fencedSQLBlock = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)\\s*```")
	xmlWrapperTags = regexp.MustCompile(`(?is)</?(?:sql|query|answer)>`)
	sqlPrefixLine  = regexp.MustCompile(`(?i)^(sql|query|answer)\s*:\s*`)
	leadingComment = regexp.MustCompile(`(?m)^\s*--[^\n]*\n`)
)

// CleanSQL normalizes a raw LM response into a single SQL statement: it
// strips a surrounding markdown fence, XML-like wrapper tags, a leading
// "SQL:"/"Query:"/"Answer:" prefix and leading comment lines, then retains
// only the first complete statement up to its terminating semicolon.
func CleanSQL(response string) string {
	s := strings.TrimSpace(response)

	if m := fencedSQLBlock.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	s = xmlWrapperTags.ReplaceAllString(s, "")
	for {
		stripped := leadingComment.ReplaceAllString(s, "")
		stripped = strings.TrimSpace(stripped)
		if stripped == s {
			break
		}
		s = stripped
	}
	s = sqlPrefixLine.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if idx := strings.IndexByte(s, ';'); idx >= 0 {
		s = s[:idx+1]
	}
	return strings.TrimSpace(s)
}
