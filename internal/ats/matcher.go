package ats

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrMalformedKeywords signals a keyword set that cannot be analyzed, such as
// one containing blank entries. Empty sets are not malformed.
var ErrMalformedKeywords = errors.New("malformed keyword set")

// MatchResult partitions a keyword set into the keywords found in the text and
// the ones that were not. Both slices keep the input order.
type MatchResult struct {
	Matched []string
	Missing []string
}

// Total returns the size of the keyword set the result was built from.
func (m MatchResult) Total() int { return len(m.Matched) + len(m.Missing) }

// Ratio returns matched/total, or 0 for an empty keyword set.
func (m MatchResult) Ratio() float64 {
	total := m.Total()
	if total == 0 {
		return 0
	}
	return float64(len(m.Matched)) / float64(total)
}

// SkillMatch renders the "<matched>/<total>" label.
func (m MatchResult) SkillMatch() string {
	return fmt.Sprintf("%d/%d", len(m.Matched), m.Total())
}

// ValidateKeywords reports ErrMalformedKeywords when any entry is blank.
func ValidateKeywords(keywords []string) error {
	for i, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("%w: blank keyword at index %d", ErrMalformedKeywords, i)
		}
	}
	return nil
}

// Match tests every keyword against normalized text and partitions the set.
// normalized must already be the output of Normalize.
func Match(normalized string, keywords []string) MatchResult {
	res := MatchResult{
		Matched: make([]string, 0, len(keywords)),
		Missing: make([]string, 0, len(keywords)),
	}
	for _, kw := range keywords {
		if Contains(normalized, kw) {
			res.Matched = append(res.Matched, kw)
		} else {
			res.Missing = append(res.Missing, kw)
		}
	}
	return res
}

// Contains reports whether keyword occurs in normalized text. Strategies run in
// order and stop at the first hit: substring, whole word, whitespace-flexible
// pattern (keywords longer than 3 characters) and known variations.
func Contains(normalized, keyword string) bool {
	kw := strings.TrimSpace(keyword)
	if kw == "" || normalized == "" {
		return false
	}
	nk := Normalize(kw)

	if nk != "" && strings.Contains(normalized, nk) {
		return true
	}
	if wordBoundaryMatch(normalized, kw) {
		return true
	}
	if utf8.RuneCountInString(kw) > 3 && flexibleMatch(normalized, nk) {
		return true
	}
	return variationMatch(normalized, kw)
}

func wordBoundaryMatch(text, keyword string) bool {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// flexibleMatch allows any amount of whitespace, including none, between the
// words of a compound keyword, so "full stack" also finds "fullstack".
func flexibleMatch(text, normalizedKeyword string) bool {
	parts := strings.Fields(normalizedKeyword)
	if len(parts) == 0 {
		return false
	}
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re, err := regexp.Compile(`(?i)` + strings.Join(parts, `\s*`))
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// variationMatch reports whether any variation of keyword is contained in text.
func variationMatch(text, keyword string) bool {
	for _, v := range VariationsOf(keyword) {
		if nv := Normalize(v); nv != "" && strings.Contains(text, nv) {
			return true
		}
	}
	return false
}
