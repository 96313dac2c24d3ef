package ats

import (
	"fmt"
	"strings"
)

// MatchLevel is the coarse tier that drives strength phrasing.
type MatchLevel string

const (
	MatchLevelHigh   MatchLevel = "high"
	MatchLevelMedium MatchLevel = "medium"
	MatchLevelLow    MatchLevel = "low"
)

// LevelFor derives the match level from the number of matched keywords.
func LevelFor(matched int) MatchLevel {
	switch {
	case matched >= 8:
		return MatchLevelHigh
	case matched >= 5:
		return MatchLevelMedium
	default:
		return MatchLevelLow
	}
}

const maxStatements = 3

// relatedTerms lists clusters of terms that tie keywords together for
// feedback grouping.
var relatedTerms = [][]string{
	{"java", "spring", "hibernate", "j2ee"},
	{"python", "django", "flask", "pandas"},
	{"javascript", "react", "node", "angular", "vue"},
	{"ui", "ux", "design", "user"},
	{"hr", "recruitment", "hiring", "employee"},
	{"seo", "keyword", "content", "marketing"},
	{"medical", "patient", "healthcare", "clinical"},
	{"prompt", "ai", "nlp", "machine learning"},
}

var (
	noStrengths = []string{
		"Limited experience directly relevant to this role",
		"Consider adding more role-specific keywords to your resume",
		"Focus on transferable skills that could apply to this position",
	}
	noImprovements = []string{
		"Your resume already includes most key terms for this role",
		"Consider adding more quantifiable achievements",
		"Enhance your resume with more specific project details",
	}
	genericImprovements = []string{
		"Quantify your achievements with specific metrics",
		"Add more specific technical achievements",
		"Highlight leadership experience",
		"Include more industry-specific terminology",
	}
)

// DefaultSuggestions are the role-independent tips attached to every report.
var DefaultSuggestions = []string{
	"Quantify your achievements with specific metrics",
	"Tailor your resume to highlight skills relevant to the position",
	"Use strong action verbs to describe your accomplishments",
	"Ensure your resume is well-formatted and easy to read",
	"Add keywords from the job description to pass ATS screening",
}

func genericStrengths(role string) []string {
	return []string{
		fmt.Sprintf("Experience relevant to %s position", role),
		"Professional communication skills",
		"Problem-solving abilities",
		"Team collaboration experience",
	}
}

// GenerateStrengths renders up to three statements from the matched keywords.
func GenerateStrengths(matched []string, role string, level MatchLevel) []string {
	if len(matched) == 0 {
		return append([]string(nil), noStrengths...)
	}
	var prefix string
	switch level {
	case MatchLevelHigh:
		prefix = "Strong experience in "
	case MatchLevelMedium:
		prefix = "Demonstrated knowledge of "
	default:
		prefix = "Some background in "
	}
	return render(GroupKeywords(matched), prefix, genericStrengths(role))
}

// GenerateImprovements renders up to three statements from the missing keywords.
func GenerateImprovements(missing []string, _ string) []string {
	if len(missing) == 0 {
		return append([]string(nil), noImprovements...)
	}
	return render(GroupKeywords(missing), "Add experience with ", genericImprovements)
}

func render(groups [][]string, prefix string, padding []string) []string {
	out := make([]string, 0, maxStatements)
	for _, g := range groups {
		if len(out) == maxStatements {
			break
		}
		out = append(out, prefix+strings.Join(g, ", "))
	}
	for _, p := range padding {
		if len(out) >= maxStatements {
			break
		}
		out = append(out, p)
	}
	return out
}

// GroupKeywords clusters keywords in a single greedy pass. Each ungrouped
// keyword seeds a group that absorbs every later ungrouped keyword related to
// the seed. Repeated keywords (case-insensitive) are kept once.
func GroupKeywords(keywords []string) [][]string {
	used := make(map[string]bool, len(keywords))
	var groups [][]string
	for i, seed := range keywords {
		seedKey := strings.ToLower(seed)
		if used[seedKey] {
			continue
		}
		used[seedKey] = true
		group := []string{seed}
		for _, other := range keywords[i+1:] {
			otherKey := strings.ToLower(other)
			if used[otherKey] {
				continue
			}
			if related(seedKey, otherKey) {
				group = append(group, other)
				used[otherKey] = true
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// related expects lower-cased input.
func related(a, b string) bool {
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	for _, cluster := range relatedTerms {
		if containsAny(a, cluster) && containsAny(b, cluster) {
			return true
		}
	}
	return false
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
