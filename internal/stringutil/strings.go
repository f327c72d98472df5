// Package stringutil provides common string utility functions.
package stringutil

import "strings"

// ContainsIgnoreCase checks if s contains substr, ignoring case.
func ContainsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// NormalizeName canonicalizes a display name for comparison: lower-cases it,
// collapses runs of whitespace and punctuation into a single underscore, and
// strips leading/trailing underscores. Idempotent: normalizing an already
// normalized name yields the same string.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastSep := true // suppress leading separator
	for _, r := range strings.ToLower(name) {
		if isNameRune(r) {
			b.WriteRune(r)
			lastSep = false
		} else if !lastSep {
			b.WriteByte('_')
			lastSep = true
		}
	}

	return strings.TrimRight(b.String(), "_")
}

func isNameRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
}
