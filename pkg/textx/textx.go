// Package textx provides small text utilities shared by the extraction paths.
package textx

import (
	"strings"
	"unicode"
)

const bom = "\ufeff"

// SanitizeText removes control characters except tab/newline/CR, drops
// zero-width formatting runes and trims surrounding space.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(r)
		case r < 32 || r == 127:
		case r == '\u200b' || r == '\u200c' || r == '\u200d' || r == '\ufeff':
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// CollapseWhitespace replaces every whitespace run with a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// DecodePlain turns an uploaded plain-text file into a sanitized string.
// A UTF-8 byte order mark is dropped and invalid sequences become U+FFFD.
func DecodePlain(b []byte) string {
	s := strings.TrimPrefix(string(b), bom)
	return SanitizeText(strings.ToValidUTF8(s, "\ufffd"))
}
