package ats

import "math"

// Enrichment is what a language model contributes to an analysis.
type Enrichment struct {
	Score            int      `json:"score"`
	Strengths        []string `json:"strengths"`
	Improvements     []string `json:"improvements"`
	Suggestions      []string `json:"suggestions"`
	ActionVerbsScore int      `json:"actionVerbsScore"`
	ReadabilityScore int      `json:"readabilityScore"`
}

// BlendWeights weigh the keyword score against the model score.
type BlendWeights struct {
	Keyword float64
	LLM     float64
}

// DefaultBlendWeights gives the model the larger share.
var DefaultBlendWeights = BlendWeights{Keyword: 0.4, LLM: 0.6}

// Blend merges a successful enrichment into a. The score becomes
// round(keyword*w.Keyword + llm*w.LLM); action-verb and readability scores are
// replaced outright; narrative lists are replaced when the model supplied any.
// Callers must not call Blend for failed enrichments: fallback is total.
func Blend(a Analysis, e Enrichment, w BlendWeights) Analysis {
	if w.Keyword == 0 && w.LLM == 0 {
		w = DefaultBlendWeights
	}
	out := a
	score := int(math.Round(float64(a.Score)*w.Keyword + float64(e.Score)*w.LLM))
	out.Score = max(0, min(100, score))
	out.ActionVerbs = e.ActionVerbsScore
	out.Readability = e.ReadabilityScore
	if len(e.Strengths) > 0 {
		out.Strengths = append([]string(nil), e.Strengths...)
	}
	if len(e.Improvements) > 0 {
		out.Improvements = append([]string(nil), e.Improvements...)
	}
	if len(e.Suggestions) > 0 {
		out.Suggestions = append([]string(nil), e.Suggestions...)
	}
	out.LLMEnhanced = true
	return out
}
