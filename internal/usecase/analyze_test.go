package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/ats"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
	obsctx "github.com/fairyhunter13/ats-resume-analyzer/internal/observability"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/usecase"
)

const backendResume = "I developed APIs using Python and SQL for 3 years at a fintech startup."

type stubKeywords struct {
	keywords []string
	err      error
	calls    int
}

func (s *stubKeywords) KeywordsFor(_ domain.Context, _ string) ([]string, error) {
	s.calls++
	return s.keywords, s.err
}

type mockEnricher struct{ mock.Mock }

func (m *mockEnricher) Enrich(ctx domain.Context, text, role string, keywords []string) (ats.Enrichment, error) {
	args := m.Called(ctx, text, role, keywords)
	return args.Get(0).(ats.Enrichment), args.Error(1)
}

func fixedJitter(n int) usecase.AnalyzeOptions {
	return usecase.AnalyzeOptions{Jitter: func() int { return n }}
}

func TestAnalyze_KeywordOnly(t *testing.T) {
	t.Parallel()
	kw := &stubKeywords{keywords: []string{"Python", "Django", "SQL"}}
	svc := usecase.NewAnalyzeService(kw, nil, fixedJitter(2))

	rep, err := svc.Analyze(context.Background(), usecase.AnalyzeInput{Text: backendResume, Role: "Python Developer"})
	require.NoError(t, err)

	assert.Equal(t, "Python Developer", rep.JobRole)
	assert.Equal(t, 80, rep.Score)
	assert.Equal(t, "2/3", rep.SkillMatch)
	assert.Equal(t, "82%", rep.ResumePercentile)
	assert.Equal(t, []string{"Python", "SQL"}, rep.MatchedKeywords)
	assert.Equal(t, []string{"Django"}, rep.MissingKeywords)
	assert.NotEmpty(t, rep.Strengths)
	assert.NotEmpty(t, rep.Suggestions)
	assert.False(t, rep.LLMEnhanced)
	assert.False(t, rep.Degraded)
}

func TestAnalyze_PercentileCapped(t *testing.T) {
	t.Parallel()
	kw := &stubKeywords{keywords: []string{"Python", "SQL"}}
	enr := &mockEnricher{}
	enr.On("Enrich", mock.Anything, backendResume, "Backend", []string{"Python", "SQL"}).
		Return(ats.Enrichment{Score: 100, ActionVerbsScore: 5, ReadabilityScore: 5}, nil)
	svc := usecase.NewAnalyzeService(kw, enr, fixedJitter(99))

	rep, err := svc.Analyze(context.Background(), usecase.AnalyzeInput{Text: backendResume, Role: "Backend"})
	require.NoError(t, err)
	// 95*0.4 + 100*0.6 = 98; jitter is clamped to 4 and the result to 100.
	assert.Equal(t, 98, rep.Score)
	assert.Equal(t, "100%", rep.ResumePercentile)
}

func TestAnalyze_DegradedText(t *testing.T) {
	t.Parallel()
	kw := &stubKeywords{keywords: []string{"Go"}}
	enr := &mockEnricher{}
	svc := usecase.NewAnalyzeService(kw, enr, fixedJitter(4))

	for _, text := range []string{"", "   \n\t", "Go dev", strings.Repeat("a", 49)} {
		rep, err := svc.Analyze(context.Background(), usecase.AnalyzeInput{Text: text, Role: "Go Developer"})
		require.NoError(t, err)
		assert.True(t, rep.Degraded)
		assert.Equal(t, 0, rep.Score)
		assert.Equal(t, "0/0", rep.SkillMatch)
		assert.Equal(t, "0%", rep.ResumePercentile)
		assert.Equal(t, []string{ats.ReuploadSuggestion}, rep.Suggestions)
		assert.Empty(t, rep.MatchedKeywords)
		assert.NotNil(t, rep.MatchedKeywords)
		assert.NotEmpty(t, rep.Note)
	}
	assert.Zero(t, kw.calls, "keywords are not resolved for degraded text")
	enr.AssertNotCalled(t, "Enrich", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_MinTextLengthOption(t *testing.T) {
	t.Parallel()
	kw := &stubKeywords{keywords: []string{"Go"}}
	opts := fixedJitter(0)
	opts.MinTextLength = 5
	svc := usecase.NewAnalyzeService(kw, nil, opts)

	rep, err := svc.Analyze(context.Background(), usecase.AnalyzeInput{Text: "Go developer", Role: "Go"})
	require.NoError(t, err)
	assert.False(t, rep.Degraded)
	assert.Equal(t, "1/1", rep.SkillMatch)
}

func TestAnalyze_KeywordStoreFailure(t *testing.T) {
	t.Parallel()
	kw := &stubKeywords{err: fmt.Errorf("op=role.keywords_for: %w", assert.AnError)}
	svc := usecase.NewAnalyzeService(kw, nil, fixedJitter(3))

	rep, err := svc.Analyze(context.Background(), usecase.AnalyzeInput{Text: backendResume, Role: "Data Analyst"})
	require.NoError(t, err)
	assert.Equal(t, svc.FallbackReport("Data Analyst"), rep)
	assert.True(t, rep.Degraded)
	assert.Equal(t, 0, rep.Score)
	assert.Equal(t, "0%", rep.ResumePercentile)
	assert.Len(t, rep.Strengths, 3)
	assert.Len(t, rep.Improvements, 3)
	assert.Len(t, rep.Suggestions, 3)
}

func TestAnalyze_EmptyRole(t *testing.T) {
	t.Parallel()
	kw := &stubKeywords{keywords: []string{}}
	enr := &mockEnricher{}
	svc := usecase.NewAnalyzeService(kw, enr, fixedJitter(4))

	rep, err := svc.Analyze(context.Background(), usecase.AnalyzeInput{Text: backendResume, Role: "Placeholder"})
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Score)
	assert.Equal(t, "0/0", rep.SkillMatch)
	assert.Equal(t, "0%", rep.ResumePercentile)
	assert.False(t, rep.Degraded)
	assert.Contains(t, rep.Note, "Placeholder")
	enr.AssertNotCalled(t, "Enrich", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_MalformedKeywords(t *testing.T) {
	t.Parallel()
	kw := &stubKeywords{keywords: []string{"Go", " "}}
	svc := usecase.NewAnalyzeService(kw, nil, fixedJitter(0))

	_, err := svc.Analyze(context.Background(), usecase.AnalyzeInput{Text: backendResume, Role: "Go"})
	require.ErrorIs(t, err, domain.ErrInternal)
	require.ErrorIs(t, err, ats.ErrMalformedKeywords)
}

func TestAnalyze_EnrichmentBlended(t *testing.T) {
	t.Parallel()
	keywords := []string{"Python", "Django", "SQL"}
	kw := &stubKeywords{keywords: keywords}
	enr := &mockEnricher{}
	enr.On("Enrich", mock.Anything, backendResume, "Python Developer", keywords).Return(ats.Enrichment{
		Score:            90,
		Strengths:        []string{"Solid API background"},
		Improvements:     []string{"Mention Django projects"},
		ActionVerbsScore: 4,
		ReadabilityScore: 2,
	}, nil).Once()
	svc := usecase.NewAnalyzeService(kw, enr, fixedJitter(1))

	rep, err := svc.Analyze(context.Background(), usecase.AnalyzeInput{Text: backendResume, Role: "Python Developer"})
	require.NoError(t, err)

	assert.True(t, rep.LLMEnhanced)
	assert.Equal(t, 86, rep.Score)
	assert.Equal(t, "87%", rep.ResumePercentile)
	assert.Equal(t, 4, rep.ActionVerbs)
	assert.Equal(t, 2, rep.Readability)
	assert.Equal(t, []string{"Solid API background"}, rep.Strengths)
	assert.Equal(t, []string{"Mention Django projects"}, rep.Improvements)
	assert.Equal(t, ats.DefaultSuggestions, rep.Suggestions, "empty model list keeps keyword suggestions")
	assert.Equal(t, "2/3", rep.SkillMatch, "skill match stays keyword-derived")
	enr.AssertExpectations(t)
}

func TestAnalyze_EnrichmentFailureKeepsKeywordAnalysis(t *testing.T) {
	t.Parallel()
	keywords := []string{"Python", "Django", "SQL"}

	for _, failure := range []error{domain.ErrUpstreamTimeout, domain.ErrUpstreamRateLimit, domain.ErrSchemaInvalid} {
		t.Run(failure.Error(), func(t *testing.T) {
			enr := &mockEnricher{}
			enr.On("Enrich", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(ats.Enrichment{}, failure).Once()
			withLLM := usecase.NewAnalyzeService(&stubKeywords{keywords: keywords}, enr, fixedJitter(2))
			without := usecase.NewAnalyzeService(&stubKeywords{keywords: keywords}, nil, fixedJitter(2))

			in := usecase.AnalyzeInput{Text: backendResume, Role: "Python Developer"}
			got, err := withLLM.Analyze(context.Background(), in)
			require.NoError(t, err)
			want, err := without.Analyze(context.Background(), in)
			require.NoError(t, err)

			assert.Equal(t, want, got)
			assert.False(t, got.LLMEnhanced)
			enr.AssertExpectations(t)
		})
	}
}

func TestAnalyze_EnrichmentDeadline(t *testing.T) {
	t.Parallel()
	kw := &stubKeywords{keywords: []string{"Python"}}
	enr := &mockEnricher{}
	enr.On("Enrich", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, ok := ctx.Deadline()
			assert.True(t, ok, "enrichment runs under a deadline")
		}).
		Return(ats.Enrichment{}, domain.ErrUpstreamTimeout).Once()
	opts := fixedJitter(0)
	opts.LLMTimeout = 50 * time.Millisecond
	svc := usecase.NewAnalyzeService(kw, enr, opts)

	rep, err := svc.Analyze(context.Background(), usecase.AnalyzeInput{Text: backendResume, Role: "Python"})
	require.NoError(t, err)
	assert.Equal(t, 95, rep.Score)
	enr.AssertExpectations(t)
}

func TestAnalyze_KeywordListsCapped(t *testing.T) {
	t.Parallel()
	keywords := make([]string, 15)
	for i := range keywords {
		keywords[i] = fmt.Sprintf("Framework%c", 'A'+i)
	}
	svc := usecase.NewAnalyzeService(&stubKeywords{keywords: keywords}, nil, fixedJitter(0))

	rep, err := svc.Analyze(context.Background(), usecase.AnalyzeInput{Text: backendResume, Role: "Generalist"})
	require.NoError(t, err)
	assert.Equal(t, "0/15", rep.SkillMatch)
	assert.Len(t, rep.MissingKeywords, 10)
	assert.Equal(t, keywords[:10], rep.MissingKeywords)
	assert.Empty(t, rep.MatchedKeywords)
}

func TestAnalyze_DefaultJitterInRange(t *testing.T) {
	t.Parallel()
	svc := usecase.NewAnalyzeService(&stubKeywords{keywords: []string{"Python", "Django", "SQL"}}, nil, usecase.AnalyzeOptions{})

	allowed := []string{"80%", "81%", "82%", "83%", "84%"}
	for range 20 {
		rep, err := svc.Analyze(context.Background(), usecase.AnalyzeInput{Text: backendResume, Role: "Python Developer"})
		require.NoError(t, err)
		assert.Equal(t, 80, rep.Score)
		assert.Contains(t, allowed, rep.ResumePercentile)
	}
}

func TestAnalyze_EnrichmentSkipLogLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		failure    error
		wantLevel  string
		wantReason string
	}{
		{name: "breaker open", failure: fmt.Errorf("op=ai.Enrich: circuit breaker open: %w", domain.ErrUpstreamUnavailable), wantLevel: "INFO", wantReason: "circuit_open"},
		{name: "call budget spent", failure: domain.ErrUpstreamRateLimit, wantLevel: "INFO", wantReason: "rate_limited"},
		{name: "timeout", failure: domain.ErrUpstreamTimeout, wantLevel: "WARN", wantReason: "timeout"},
		{name: "bad reply", failure: domain.ErrSchemaInvalid, wantLevel: "WARN", wantReason: "invalid_reply"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			ctx := obsctx.ContextWithLogger(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

			enr := &mockEnricher{}
			enr.On("Enrich", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(ats.Enrichment{}, tt.failure).Once()
			svc := usecase.NewAnalyzeService(&stubKeywords{keywords: []string{"Python"}}, enr, fixedJitter(0))

			_, err := svc.Analyze(ctx, usecase.AnalyzeInput{Text: backendResume, Role: "Python Developer"})
			require.NoError(t, err)

			var entry map[string]any
			for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				var m map[string]any
				require.NoError(t, json.Unmarshal([]byte(line), &m))
				if m["msg"] == "llm enrichment skipped, keeping keyword analysis" {
					entry = m
				}
			}
			require.NotNil(t, entry, buf.String())
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.wantReason, entry["reason"])
		})
	}
}
