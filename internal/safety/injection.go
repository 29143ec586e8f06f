// Copyright (c) 2026 SQLSage. All rights reserved.

package safety

import (
	"regexp"
	"strings"
)

// dangerousPatterns is ported verbatim (signals, not syntax) from the
// distilled system's original SQL validator — one compiled regex per named
// signal, all case-insensitive.
var dangerousPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"statement chaining (DROP)", regexp.MustCompile(`(?i);\s*DROP\s+TABLE`)},
	{"statement chaining (DELETE)", regexp.MustCompile(`(?i);\s*DELETE\s+FROM`)},
	{"statement chaining (TRUNCATE)", regexp.MustCompile(`(?i);\s*TRUNCATE`)},
	{"statement chaining (ALTER)", regexp.MustCompile(`(?i);\s*ALTER\s+TABLE`)},
	{"statement chaining (CREATE)", regexp.MustCompile(`(?i);\s*CREATE\s+`)},
	{"statement chaining (GRANT)", regexp.MustCompile(`(?i);\s*GRANT\s+`)},
	{"statement chaining (REVOKE)", regexp.MustCompile(`(?i);\s*REVOKE\s+`)},
	{"trailing comment", regexp.MustCompile(`--[^\n]*$`)},
	{"block comment", regexp.MustCompile(`(?s)/\*.*?\*/`)},
	{"union select", regexp.MustCompile(`(?i)UNION\s+SELECT`)},
	{"tautology (numeric)", regexp.MustCompile(`(?i)OR\s+1\s*=\s*1`)},
	{"tautology (string)", regexp.MustCompile(`(?i)OR\s+'[^']*'\s*=\s*'[^']*'`)},
	{"exec call", regexp.MustCompile(`(?i)EXEC\s*\(`)},
	{"execute statement", regexp.MustCompile(`(?i)EXECUTE\s+`)},
	{"xp_cmdshell", regexp.MustCompile(`(?i)xp_cmdshell`)},
	{"sp_executesql", regexp.MustCompile(`(?i)sp_executesql`)},
	{"waitfor delay", regexp.MustCompile(`(?i)WAITFOR\s+DELAY`)},
	{"benchmark", regexp.MustCompile(`(?i)BENCHMARK\s*\(`)},
	{"sleep", regexp.MustCompile(`(?i)SLEEP\s*\(`)},
	{"hex literal", regexp.MustCompile(`0x[0-9a-fA-F]+`)},
	{"char nesting", regexp.MustCompile(`(?i)CHAR\s*\(\s*\d+`)},
}

// DetectInjection scans sql/text for known injection signals, returning the
// name of every signal that matched, in the order checked. An empty result
// means no signal fired.
func DetectInjection(sql string) []string {
	var hits []string

	for _, p := range dangerousPatterns {
		if p.pattern.MatchString(sql) {
			hits = append(hits, p.name)
		}
	}

	if strings.Count(sql, ";") > 1 {
		hits = append(hits, "multiple statement separators")
	}

	return hits
}
