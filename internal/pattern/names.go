// Copyright (c) 2026 SQLSage. All rights reserved.

package pattern

import "regexp"

// canonicalTurkishNames is a short curated set of common Turkish given
// names accepted by the name filter even when the token contains no
// Turkish-specific character and is shorter than the generic length cutoff.
var canonicalTurkishNames = map[string]bool{
	"ahmet": true, "mehmet": true, "mustafa": true, "ali": true, "hüseyin": true,
	"ayşe": true, "fatma": true, "zeynep": true, "elif": true, "emine": true,
}

var (
	// Matched against the Lower (not ASCII-folded) view, so a Turkish
	// character in the captured token is still visible for the acceptance
	// check below.
	reNameBefore = regexp.MustCompile(`(?:ismi|adı)\s+([\p{L}]+)`)
	reNameAfter  = regexp.MustCompile(`([\p{L}]+)\s+(?:isimli|adlı)`)
)

// NameFilter is a detected `name=<value>` constraint from a construct like
// "adı Ahmet olan" or "Ahmet isimli müşteri".
type NameFilter struct {
	Name  string
	Found bool
}

// detectName implements spec.md §4.7's name filter: it accepts a canonical
// Turkish given name, any token containing a Turkish character, or any
// token of length >= 3.
func detectName(n Normalized) NameFilter {
	candidate := ""
	if m := reNameBefore.FindStringSubmatch(n.Lower); m != nil {
		candidate = m[1]
	} else if m := reNameAfter.FindStringSubmatch(n.Lower); m != nil {
		candidate = m[1]
	}
	if candidate == "" {
		return NameFilter{}
	}
	if canonicalTurkishNames[candidate] || containsTurkishChar(candidate) || len(candidate) >= 3 {
		return NameFilter{Name: candidate, Found: true}
	}
	return NameFilter{}
}
