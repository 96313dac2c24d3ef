package ats

import (
	"regexp"
	"strings"
)

var reNonText = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// Normalize lower-cases raw text, replaces every character that is not a
// letter, digit or whitespace with a space, collapses whitespace runs and
// trims the result. Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.ToLower(raw)
	s = reNonText.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
