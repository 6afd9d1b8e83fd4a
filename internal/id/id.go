// Package id generates and validates record identifiers.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// nanoidLength is the default NanoID length (URL-safe alphabet).
const nanoidLength = 21

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "post-V1StGXR8_Z5jdHi6B-myT").
//
// NanoIDs are URL-friendly and compact, which matters because record
// IDs appear in path segments and query strings.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use only when entropy exhaustion should crash the program.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Valid reports whether s is a well-formed prefixed record ID.
// The dispatcher uses this during binding so that malformed
// identifiers fail as bad requests before a handler runs.
func Valid(s string) bool {
	// The NanoID alphabet itself contains '-', so the prefix ends at
	// the first dash, not the last.
	dash := strings.IndexByte(s, '-')
	if dash <= 0 || len(s)-dash-1 != nanoidLength {
		return false
	}
	for _, r := range s[:dash] {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	for i := dash + 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

// ValidFor reports whether s is a well-formed record ID carrying the
// given prefix (e.g., ValidFor("post-…", "post")).
func ValidFor(s, prefix string) bool {
	return Valid(s) && strings.HasPrefix(s, prefix+"-")
}
