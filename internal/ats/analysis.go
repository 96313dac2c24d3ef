package ats

import (
	"fmt"
	"strings"
)

// Analysis is the full outcome of scoring one resume against one role.
type Analysis struct {
	Role         string
	Score        int
	MatchRatio   float64
	SkillMatch   string
	ActionVerbs  int
	Readability  int
	Matched      []string
	Missing      []string
	Strengths    []string
	Improvements []string
	Suggestions  []string
	LLMEnhanced  bool
	Degraded     bool
	Note         string
}

// Engine runs the pipeline with a configurable score curve.
type Engine struct {
	Curve ScoreCurve
}

// NewEngine returns an Engine using curve, or DefaultCurve when curve has no
// cap configured.
func NewEngine(curve ScoreCurve) Engine {
	if curve.Cap == 0 {
		curve = DefaultCurve
	}
	return Engine{Curve: curve}
}

// Analyze runs the pipeline with DefaultCurve.
func Analyze(raw string, keywords []string, role string) (Analysis, error) {
	return Engine{Curve: DefaultCurve}.Analyze(raw, keywords, role)
}

// Analyze normalizes raw text, matches it against keywords and derives the
// score and feedback. An empty keyword set yields EmptyRoleAnalysis; a set
// with blank entries yields ErrMalformedKeywords.
func (e Engine) Analyze(raw string, keywords []string, role string) (Analysis, error) {
	if err := ValidateKeywords(keywords); err != nil {
		return Analysis{}, err
	}
	if len(keywords) == 0 {
		return EmptyRoleAnalysis(role, raw), nil
	}
	m := Match(Normalize(raw), keywords)
	rep := e.Curve.Report(m, raw)
	level := LevelFor(len(m.Matched))
	return Analysis{
		Role:         role,
		Score:        rep.Score,
		MatchRatio:   rep.MatchRatio,
		SkillMatch:   m.SkillMatch(),
		ActionVerbs:  rep.ActionVerbScore,
		Readability:  rep.ReadabilityScore,
		Matched:      m.Matched,
		Missing:      m.Missing,
		Strengths:    GenerateStrengths(m.Matched, role, level),
		Improvements: GenerateImprovements(m.Missing, role),
		Suggestions:  append([]string(nil), DefaultSuggestions...),
	}, nil
}

// DefaultMinTextLength is the shortest extracted text worth scoring.
const DefaultMinTextLength = 50

// IsDegraded reports whether extracted text is too short to analyze.
func IsDegraded(raw string, minLen int) bool {
	if minLen <= 0 {
		minLen = DefaultMinTextLength
	}
	return len([]rune(strings.TrimSpace(raw))) < minLen
}

// ReuploadSuggestion is the single suggestion attached to degraded reports.
const ReuploadSuggestion = "Re-upload your resume in a text-based format (PDF with selectable text, DOCX or TXT) so it can be analyzed"

// DegradedAnalysis is the minimal report for empty or unreadable documents.
func DegradedAnalysis(role string) Analysis {
	return Analysis{
		Role:         role,
		SkillMatch:   "0/0",
		Matched:      []string{},
		Missing:      []string{},
		Strengths:    []string{},
		Improvements: []string{},
		Suggestions:  []string{ReuploadSuggestion},
		Degraded:     true,
		Note:         "Little or no text could be extracted. The file may be scanned, image-only or in an unsupported format.",
	}
}

// EmptyRoleAnalysis is the report for a role that has no keywords configured.
// Auxiliary scores still reflect the text.
func EmptyRoleAnalysis(role, raw string) Analysis {
	return Analysis{
		Role:         role,
		SkillMatch:   "0/0",
		ActionVerbs:  ActionVerbScore(raw),
		Readability:  ReadabilityScore(raw),
		Matched:      []string{},
		Missing:      []string{},
		Strengths:    []string{},
		Improvements: []string{},
		Suggestions:  append([]string(nil), DefaultSuggestions...),
		Note:         fmt.Sprintf("No keywords are configured for the %s role.", role),
	}
}

// FallbackAnalysis is substituted when a collaborator fails before the
// resume could be scored.
func FallbackAnalysis(role string) Analysis {
	return Analysis{
		Role:         role,
		SkillMatch:   "0/0",
		Matched:      []string{},
		Missing:      []string{},
		Strengths:    genericStrengths(role)[:maxStatements],
		Improvements: append([]string(nil), genericImprovements[:maxStatements]...),
		Suggestions:  append([]string(nil), DefaultSuggestions[:maxStatements]...),
		Degraded:     true,
		Note:         "The resume could not be analyzed right now. Unsupported formats and scanned or image-only documents are the usual cause.",
	}
}
