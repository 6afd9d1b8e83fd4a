// Package normalize provides canonical forms for user-facing identifiers.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Username returns the canonical form of a username for uniqueness
// checks and index lookups: Unicode NFKC, case-folded, trimmed.
// Two usernames that normalize to the same string refer to the same
// account.
func Username(raw string) string {
	s := strings.TrimSpace(sanitize(raw))
	s = norm.NFKC.String(s)
	return cases.Fold().String(s)
}

// TagName returns the canonical form of a tag name. Tags are matched
// case-insensitively and whitespace runs collapse to single spaces.
func TagName(raw string) string {
	s := strings.TrimSpace(sanitize(raw))
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}

// sanitize drops null bytes, which badger keys and JSON both dislike.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
