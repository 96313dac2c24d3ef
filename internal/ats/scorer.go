package ats

import (
	"math"
	"regexp"
	"strings"
)

// Threshold raises the score to at least Floor once the match ratio reaches
// MinRatio.
type Threshold struct {
	MinRatio float64
	Floor    int
}

// ScoreCurve maps a match ratio onto a bounded score:
// min(Cap, max(round(Base + ratio*Span), floors...)).
type ScoreCurve struct {
	Base       float64
	Span       float64
	Thresholds []Threshold
	Cap        int
}

// DefaultCurve front-loads partial coverage and tops out at 95. No resume is
// scored as perfect: keyword coverage alone never proves a fit.
var DefaultCurve = ScoreCurve{
	Base: 5,
	Span: 90,
	Thresholds: []Threshold{
		{MinRatio: 1.0, Floor: 95},
		{MinRatio: 0.8, Floor: 90},
		{MinRatio: 0.6, Floor: 80},
		{MinRatio: 0.4, Floor: 65},
	},
	Cap: 95,
}

// ScoreReport carries the numeric outputs of one analysis.
type ScoreReport struct {
	Score            int
	MatchRatio       float64
	ActionVerbScore  int
	ReadabilityScore int
}

// Score computes the report with DefaultCurve.
func Score(m MatchResult, raw string) ScoreReport {
	return DefaultCurve.Report(m, raw)
}

// Report computes the keyword score from m and the auxiliary scores from the
// raw, un-normalized text. An empty keyword set scores 0.
func (c ScoreCurve) Report(m MatchResult, raw string) ScoreReport {
	r := ScoreReport{
		MatchRatio:       m.Ratio(),
		ActionVerbScore:  ActionVerbScore(raw),
		ReadabilityScore: ReadabilityScore(raw),
	}
	if m.Total() > 0 {
		r.Score = c.Apply(r.MatchRatio)
	}
	return r
}

// Apply maps ratio (clamped to [0,1]) onto the curve.
func (c ScoreCurve) Apply(ratio float64) int {
	ratio = math.Max(0, math.Min(1, ratio))
	score := int(math.Round(c.Base + ratio*c.Span))
	for _, t := range c.Thresholds {
		if ratio >= t.MinRatio && score < t.Floor {
			score = t.Floor
		}
	}
	if score > c.Cap {
		score = c.Cap
	}
	return score
}

// ActionVerbs is the list scanned by ActionVerbScore.
var ActionVerbs = []string{
	"achieved", "improved", "developed", "managed", "created", "implemented",
	"designed", "led", "increased", "reduced", "negotiated", "organized",
	"delivered", "launched", "built", "trained", "supervised", "coordinated",
	"analyzed", "established", "generated", "resolved", "streamlined",
}

// ActionVerbScore counts the distinct action verbs contained in raw text and
// returns clamp(ceil(count/5), 1, 5).
func ActionVerbScore(raw string) int {
	lower := strings.ToLower(raw)
	count := 0
	for _, v := range ActionVerbs {
		if strings.Contains(lower, v) {
			count++
		}
	}
	score := int(math.Ceil(float64(count) / 5))
	return max(1, min(5, score))
}

var reSentenceEnd = regexp.MustCompile(`[.!?]+`)

// ReadabilityScore rates raw text from 2 (dense) to 5 (easy) using average
// sentence length and the share of words longer than six characters. Empty
// text rates 5.
func ReadabilityScore(raw string) int {
	sentences := 0
	for _, s := range reSentenceEnd.Split(raw, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	words := strings.Fields(raw)
	long := 0
	for _, w := range words {
		if len([]rune(w)) > 6 {
			long++
		}
	}
	avg := float64(len(words)) / float64(max(1, sentences))
	longPct := float64(long) / float64(max(1, len(words))) * 100

	switch {
	case avg > 25 || longPct > 30:
		return 2
	case avg > 20 || longPct > 25:
		return 3
	case avg > 15 || longPct > 20:
		return 4
	default:
		return 5
	}
}
