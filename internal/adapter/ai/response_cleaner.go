// Package ai turns a chat model into an analysis Enricher: it builds the
// prompt, keeps it within a token budget, cleans and validates the reply and
// guards the provider with a circuit breaker.
package ai

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSONObject is returned when a reply contains no JSON object at all.
var ErrNoJSONObject = errors.New("no json object in reply")

var reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// CleanJSONResponse extracts the first JSON object from a model reply. It
// strips markdown code fences and trailing commas; it does not try to repair
// quoting.
func CleanJSONResponse(reply string) (string, error) {
	s := stripFences(reply)
	obj, ok := firstObject(s)
	if !ok {
		return "", ErrNoJSONObject
	}
	return reTrailingComma.ReplaceAllString(obj, "$1"), nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// language tag, e.g. ```json
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.Contains(s[:i], "{") {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// firstObject returns the first balanced {...} in s, ignoring braces inside
// string literals.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
