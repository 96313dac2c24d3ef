package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/ats"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
	obsctx "github.com/fairyhunter13/ats-resume-analyzer/internal/observability"
	"github.com/fairyhunter13/ats-resume-analyzer/pkg/textx"
)

// Report list limits.
const (
	maxKeywordsShown = 10
	maxJitter        = 4
)

// KeywordSource resolves the keyword set for a role.
type KeywordSource interface {
	KeywordsFor(ctx domain.Context, roleName string) ([]string, error)
}

// AnalyzeInput is one resume to score.
type AnalyzeInput struct {
	Text   string
	Role   string
	Source string // upload or text, for logs only
}

// Report is the presentation form of an analysis.
type Report struct {
	JobRole          string   `json:"jobRole"`
	Score            int      `json:"score"`
	SkillMatch       string   `json:"skillMatch"`
	ActionVerbs      int      `json:"actionVerbs"`
	Readability      int      `json:"readability"`
	ResumePercentile string   `json:"resumePercentile"`
	MatchedKeywords  []string `json:"matchedKeywords"`
	MissingKeywords  []string `json:"missingKeywords"`
	Strengths        []string `json:"strengths"`
	Improvements     []string `json:"improvements"`
	Suggestions      []string `json:"suggestions"`
	LLMEnhanced      bool     `json:"llmEnhanced"`
	Degraded         bool     `json:"degraded"`
	Note             string   `json:"note,omitempty"`
}

// AnalyzeOptions tune AnalyzeService. Zero values select the defaults.
type AnalyzeOptions struct {
	Curve         ats.ScoreCurve
	Weights       ats.BlendWeights
	MinTextLength int
	LLMTimeout    time.Duration
	// Jitter returns the cosmetic offset added to resumePercentile, in [0,4].
	Jitter func() int
}

// AnalyzeService runs the keyword pipeline and, when an Enricher is
// configured, blends in a language model's assessment.
type AnalyzeService struct {
	Keywords KeywordSource
	Enricher domain.Enricher
	engine   ats.Engine
	opts     AnalyzeOptions
}

// NewAnalyzeService wires the service. enricher may be nil.
func NewAnalyzeService(kw KeywordSource, enricher domain.Enricher, opts AnalyzeOptions) AnalyzeService {
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = ats.DefaultMinTextLength
	}
	if opts.LLMTimeout <= 0 {
		opts.LLMTimeout = 20 * time.Second
	}
	if opts.Weights == (ats.BlendWeights{}) {
		opts.Weights = ats.DefaultBlendWeights
	}
	if opts.Jitter == nil {
		opts.Jitter = func() int { return rand.IntN(maxJitter + 1) }
	}
	return AnalyzeService{Keywords: kw, Enricher: enricher, engine: ats.NewEngine(opts.Curve), opts: opts}
}

// Analyze scores in.Text for in.Role. Short or empty text yields a degraded
// report, a keyword store failure yields the fallback report, and an
// enrichment failure leaves the keyword analysis untouched. The only error
// is ErrInternal for a keyword set the core rejects.
func (s AnalyzeService) Analyze(ctx context.Context, in AnalyzeInput) (Report, error) {
	ctx = obsctx.ContextWithLogAttrs(ctx, slog.String("job_role", in.Role), slog.String("source", in.Source))
	lg := obsctx.LoggerFromContext(ctx)
	text := textx.SanitizeText(in.Text)

	if ats.IsDegraded(text, s.opts.MinTextLength) {
		lg.Info("resume text too short, returning degraded report", slog.Int("chars", len([]rune(text))))
		observability.ObserveAnalysis(observability.OutcomeDegraded, 0, 0)
		return s.present(ats.DegradedAnalysis(in.Role), false), nil
	}

	keywords, err := s.Keywords.KeywordsFor(ctx, in.Role)
	if err != nil {
		lg.Error("keyword lookup failed, returning fallback report", slog.Any("error", err))
		observability.ObserveAnalysis(observability.OutcomeDegraded, 0, 0)
		return s.FallbackReport(in.Role), nil
	}
	if len(keywords) == 0 {
		observability.ObserveAnalysis(observability.OutcomeEmptyRole, 0, 0)
		return s.present(ats.EmptyRoleAnalysis(in.Role, text), false), nil
	}

	analysis, err := s.engine.Analyze(text, keywords, in.Role)
	if err != nil {
		return Report{}, fmt.Errorf("op=analyze.Analyze: %w: %w", domain.ErrInternal, err)
	}
	analysis = s.enrich(ctx, analysis, text, keywords)

	lg.Info("resume analyzed",
		slog.Int("score", analysis.Score),
		slog.String("skill_match", analysis.SkillMatch),
		slog.Bool("llm_enhanced", analysis.LLMEnhanced))
	observability.ObserveAnalysis(observability.OutcomeFull, analysis.Score, analysis.MatchRatio)
	return s.present(analysis, true), nil
}

func (s AnalyzeService) enrich(ctx context.Context, a ats.Analysis, text string, keywords []string) ats.Analysis {
	if s.Enricher == nil {
		return a
	}
	cctx, cancel := context.WithTimeout(ctx, s.opts.LLMTimeout)
	defer cancel()
	e, err := s.Enricher.Enrich(cctx, text, a.Role, keywords)
	if err != nil {
		reason, level := enrichSkipReason(err)
		obsctx.LoggerFromContext(ctx).Log(ctx, level, "llm enrichment skipped, keeping keyword analysis",
			slog.String("reason", reason), slog.Any("error", err))
		return a
	}
	return ats.Blend(a, e, s.opts.Weights)
}

// enrichSkipReason classifies an enrichment failure. Expected back-pressure
// (open breaker, spent call budget) is logged at info, anything else at warn.
func enrichSkipReason(err error) (string, slog.Level) {
	switch {
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "circuit_open", slog.LevelInfo
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		return "rate_limited", slog.LevelInfo
	case errors.Is(err, domain.ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout", slog.LevelWarn
	case errors.Is(err, domain.ErrSchemaInvalid):
		return "invalid_reply", slog.LevelWarn
	}
	return "error", slog.LevelWarn
}

// FallbackReport is the generic placeholder shown when a resume could not be
// processed at all.
func (s AnalyzeService) FallbackReport(role string) Report {
	return s.present(ats.FallbackAnalysis(role), false)
}

// present converts an analysis for rendering. Keyword lists are capped at ten
// entries; resumePercentile adds a random 0-4 for full analyses only and is
// not reproducible.
func (s AnalyzeService) present(a ats.Analysis, jitter bool) Report {
	pct := a.Score
	if jitter {
		pct = min(100, pct+max(0, min(maxJitter, s.opts.Jitter())))
	}
	return Report{
		JobRole:          a.Role,
		Score:            a.Score,
		SkillMatch:       a.SkillMatch,
		ActionVerbs:      a.ActionVerbs,
		Readability:      a.Readability,
		ResumePercentile: fmt.Sprintf("%d%%", pct),
		MatchedKeywords:  firstN(a.Matched, maxKeywordsShown),
		MissingKeywords:  firstN(a.Missing, maxKeywordsShown),
		Strengths:        nonNil(a.Strengths),
		Improvements:     nonNil(a.Improvements),
		Suggestions:      nonNil(a.Suggestions),
		LLMEnhanced:      a.LLMEnhanced,
		Degraded:         a.Degraded,
		Note:             a.Note,
	}
}

func firstN(in []string, n int) []string {
	if len(in) > n {
		in = in[:n]
	}
	return append([]string{}, in...)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
