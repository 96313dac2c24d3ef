package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/ats"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

const (
	maxListItems = 5
	// defaultSubScore is used when the model omits actionVerbsScore or
	// readabilityScore.
	defaultSubScore = 3
)

type enrichmentPayload struct {
	Score            *float64 `json:"score"`
	Strengths        []string `json:"strengths"`
	Improvements     []string `json:"improvements"`
	Suggestions      []string `json:"suggestions"`
	ActionVerbsScore *float64 `json:"actionVerbsScore"`
	ReadabilityScore *float64 `json:"readabilityScore"`
}

// ParseEnrichment cleans a raw model reply and validates it into an
// Enrichment. Any structural or range problem yields domain.ErrSchemaInvalid.
func ParseEnrichment(reply string) (ats.Enrichment, error) {
	cleaned, err := CleanJSONResponse(reply)
	if err != nil {
		return ats.Enrichment{}, fmt.Errorf("op=ai.ParseEnrichment: %w: %v", domain.ErrSchemaInvalid, err)
	}
	var p enrichmentPayload
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return ats.Enrichment{}, fmt.Errorf("op=ai.ParseEnrichment: %w: %v", domain.ErrSchemaInvalid, err)
	}
	if p.Score == nil {
		return ats.Enrichment{}, fmt.Errorf("op=ai.ParseEnrichment: %w: score missing", domain.ErrSchemaInvalid)
	}
	score, err := bounded("score", *p.Score, 0, 100)
	if err != nil {
		return ats.Enrichment{}, err
	}
	verbs, err := optionalSubScore("actionVerbsScore", p.ActionVerbsScore)
	if err != nil {
		return ats.Enrichment{}, err
	}
	readability, err := optionalSubScore("readabilityScore", p.ReadabilityScore)
	if err != nil {
		return ats.Enrichment{}, err
	}
	return ats.Enrichment{
		Score:            score,
		Strengths:        cleanList(p.Strengths),
		Improvements:     cleanList(p.Improvements),
		Suggestions:      cleanList(p.Suggestions),
		ActionVerbsScore: verbs,
		ReadabilityScore: readability,
	}, nil
}

func optionalSubScore(field string, v *float64) (int, error) {
	if v == nil {
		return defaultSubScore, nil
	}
	return bounded(field, *v, 1, 5)
}

func bounded(field string, v float64, lo, hi int) (int, error) {
	if math.IsNaN(v) || v < float64(lo) || v > float64(hi) {
		return 0, fmt.Errorf("op=ai.ParseEnrichment: %w: %s=%v outside [%d,%d]", domain.ErrSchemaInvalid, field, v, lo, hi)
	}
	return int(math.Round(v)), nil
}

// cleanList trims entries, drops blanks and keeps at most maxListItems.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == maxListItems {
			break
		}
	}
	return out
}
