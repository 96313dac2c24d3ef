package ats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/ats"
)

func TestBlend(t *testing.T) {
	base := ats.Analysis{
		Score:        50,
		ActionVerbs:  2,
		Readability:  4,
		Strengths:    []string{"core strength"},
		Improvements: []string{"core improvement"},
		Suggestions:  []string{"core suggestion"},
	}

	t.Run("weighted score and replaced auxiliary scores", func(t *testing.T) {
		got := ats.Blend(base, ats.Enrichment{Score: 90, ActionVerbsScore: 5, ReadabilityScore: 3}, ats.DefaultBlendWeights)
		assert.Equal(t, 74, got.Score)
		assert.Equal(t, 5, got.ActionVerbs)
		assert.Equal(t, 3, got.Readability)
		assert.True(t, got.LLMEnhanced)
		assert.Equal(t, []string{"core strength"}, got.Strengths)
		assert.Equal(t, []string{"core improvement"}, got.Improvements)
		assert.Equal(t, []string{"core suggestion"}, got.Suggestions)
	})

	t.Run("model narrative replaces core narrative", func(t *testing.T) {
		got := ats.Blend(base, ats.Enrichment{
			Score:            60,
			Strengths:        []string{"clear impact statements"},
			Improvements:     []string{"add certifications"},
			Suggestions:      []string{"shorten summary"},
			ActionVerbsScore: 4,
			ReadabilityScore: 4,
		}, ats.DefaultBlendWeights)
		assert.Equal(t, 56, got.Score)
		assert.Equal(t, []string{"clear impact statements"}, got.Strengths)
		assert.Equal(t, []string{"add certifications"}, got.Improvements)
		assert.Equal(t, []string{"shorten summary"}, got.Suggestions)
	})

	t.Run("zero weights fall back to defaults", func(t *testing.T) {
		got := ats.Blend(base, ats.Enrichment{Score: 90, ActionVerbsScore: 1, ReadabilityScore: 1}, ats.BlendWeights{})
		assert.Equal(t, 74, got.Score)
	})

	t.Run("custom weights", func(t *testing.T) {
		got := ats.Blend(base, ats.Enrichment{Score: 100, ActionVerbsScore: 1, ReadabilityScore: 1}, ats.BlendWeights{Keyword: 1, LLM: 0})
		assert.Equal(t, 50, got.Score)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		_ = ats.Blend(base, ats.Enrichment{Score: 10, Strengths: []string{"x"}, ActionVerbsScore: 1, ReadabilityScore: 1}, ats.DefaultBlendWeights)
		assert.Equal(t, 50, base.Score)
		assert.Equal(t, []string{"core strength"}, base.Strengths)
		assert.False(t, base.LLMEnhanced)
	})
}
