package match

import (
	"regexp"
	"strings"
)

var (
	trailingParenPattern = regexp.MustCompile(`\s*\(.*?\)$`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a human display name into a comparison key.
// Steps are applied in this order: trim, strip one trailing parenthetical
// group, cut from the first underscore, remove all whitespace, lower-case.
// Normalize is idempotent and always returns a string.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = trailingParenPattern.ReplaceAllString(s, "")
	if idx := strings.Index(s, "_"); idx >= 0 {
		s = s[:idx]
	}
	s = whitespacePattern.ReplaceAllString(s, "")
	return strings.ToLower(s)
}
