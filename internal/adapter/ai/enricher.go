package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/ats"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
	obsctx "github.com/fairyhunter13/ats-resume-analyzer/internal/observability"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/service/ratelimiter"
)

// LLM call outcomes used as metric labels.
const (
	outcomeSuccess     = "success"
	outcomeTimeout     = "timeout"
	outcomeCircuitOpen = "circuit_open"
	outcomeRateLimited = "rate_limited"
	outcomeInvalid     = "invalid"
	outcomeError       = "error"
)

// Enricher implements domain.Enricher on top of a ChatClient.
type Enricher struct {
	client          domain.ChatClient
	breaker         *CircuitBreaker
	limiter         ratelimiter.Limiter
	counter         *tokencount.Counter
	maxPromptTokens int
}

// Option customizes an Enricher.
type Option func(*Enricher)

// WithLimiter rate limits calls per provider through l.
func WithLimiter(l ratelimiter.Limiter) Option {
	return func(e *Enricher) { e.limiter = l }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(cb *CircuitBreaker) Option {
	return func(e *Enricher) { e.breaker = cb }
}

// WithMaxPromptTokens bounds the resume text embedded in the prompt.
func WithMaxPromptTokens(n int) Option {
	return func(e *Enricher) { e.maxPromptTokens = n }
}

// NewEnricher wraps client. Without options it uses a 5-failure/60s breaker,
// no rate limit and a 6000-token resume budget.
func NewEnricher(client domain.ChatClient, opts ...Option) *Enricher {
	e := &Enricher{
		client:          client,
		breaker:         NewCircuitBreaker(client.Provider(), 5, 60*time.Second),
		counter:         tokencount.DefaultCounter,
		maxPromptTokens: 6000,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Enricher) limiterKey() string { return "llm:" + e.client.Provider() }

// Enrich asks the model for an independent assessment of resumeText.
func (e *Enricher) Enrich(ctx context.Context, resumeText, role string, keywords []string) (ats.Enrichment, error) {
	provider := e.client.Provider()
	lg := obsctx.LoggerFromContext(ctx).With(slog.String("provider", provider))

	gen, err := e.breaker.Allow()
	if err != nil {
		observability.ObserveLLM(provider, outcomeCircuitOpen, 0)
		return ats.Enrichment{}, fmt.Errorf("op=ai.Enrich: %w: %w", err, domain.ErrUpstreamUnavailable)
	}
	if e.limiter != nil {
		allowed, retryAfter, err := e.limiter.Allow(ctx, e.limiterKey(), 1)
		if err != nil {
			lg.Warn("llm rate limiter unavailable", slog.Any("error", err))
		}
		if !allowed {
			e.breaker.Release(gen)
			observability.ObserveLLM(provider, outcomeRateLimited, 0)
			return ats.Enrichment{}, fmt.Errorf("op=ai.Enrich: retry after %s: %w", retryAfter, domain.ErrUpstreamRateLimit)
		}
	}

	text := e.counter.Truncate(resumeText, e.maxPromptTokens)
	prompt := BuildPrompt(text, role, keywords)

	start := time.Now()
	reply, err := e.client.Complete(ctx, prompt)
	dur := time.Since(start)
	if err != nil {
		e.breaker.Record(gen, err)
		outcome := outcomeError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrUpstreamTimeout) {
			outcome = outcomeTimeout
		}
		observability.ObserveLLM(provider, outcome, dur)
		return ats.Enrichment{}, fmt.Errorf("op=ai.Enrich: %w", err)
	}

	enrichment, err := ParseEnrichment(reply)
	e.breaker.Record(gen, err)
	if err != nil {
		observability.ObserveLLM(provider, outcomeInvalid, dur)
		lg.Debug("llm reply rejected", slog.Int("reply_len", len(reply)), slog.Any("error", err))
		return ats.Enrichment{}, err
	}
	observability.ObserveLLM(provider, outcomeSuccess, dur)
	lg.Debug("llm enrichment ok", slog.Int("score", enrichment.Score), slog.Duration("duration", dur))
	return enrichment, nil
}
