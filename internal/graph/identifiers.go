package graph

import (
	"fmt"
	"regexp"
	"strings"
)

// Node labels and relationship types cannot be bound as query parameters, so
// anything interpolated into Cypher text must stay inside this alphabet.
var typePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Normalize lowercases s and replaces spaces with underscores so that case and
// whitespace variants of a name collapse to a single graph identity.
func Normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "_")
}

// sanitizeType normalizes s and verifies it is safe to interpolate into query
// text as a label or relationship type.
func sanitizeType(s string) (string, error) {
	normalized := Normalize(s)
	if !typePattern.MatchString(normalized) {
		return "", fmt.Errorf("invalid label or relationship type %q", s)
	}
	return normalized, nil
}
