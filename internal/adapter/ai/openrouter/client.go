// Package openrouter implements domain.ChatClient against an
// OpenAI-compatible chat completions endpoint (OpenRouter by default).
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/config"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
	obsctx "github.com/fairyhunter13/ats-resume-analyzer/internal/observability"
)

const (
	providerName   = "openrouter"
	maxReplyTokens = 1024
	snippetLen     = 512
)

// Client calls POST {base}/chat/completions with JSON mode enabled.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a client. The HTTP timeout is LLM_TIMEOUT; callers still
// bound the whole call, retries included, with their context.
func New(cfg config.Config) *Client {
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.LLMTimeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// Provider returns "openrouter".
func (c *Client) Provider() string { return providerName }

func (c *Client) getBackoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends prompt as a single user message and returns the first
// choice's content. 429 and 5xx responses are retried with exponential
// backoff; other 4xx responses fail immediately.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	lg := obsctx.LoggerFromContext(ctx).With(slog.String("provider", providerName), slog.String("model", c.cfg.OpenRouterModel))
	if strings.TrimSpace(c.cfg.OpenRouterAPIKey) == "" {
		return "", fmt.Errorf("op=openrouter.Complete: %w: OPENROUTER_API_KEY missing", domain.ErrInvalidArgument)
	}
	body, err := json.Marshal(chatRequest{
		Model:          c.cfg.OpenRouterModel,
		Temperature:    0.2,
		MaxTokens:      maxReplyTokens,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("op=openrouter.Complete: %w", err)
	}
	endpoint := strings.TrimRight(c.cfg.OpenRouterBaseURL, "/") + "/chat/completions"

	var out chatResponse
	var lastStatus int
	op := func() error {
		// Recreate request each attempt to avoid reusing consumed bodies
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		r.Header.Set("Authorization", "Bearer "+c.cfg.OpenRouterAPIKey)
		r.Header.Set("Content-Type", "application/json")
		if c.cfg.OpenRouterReferer != "" {
			r.Header.Set("HTTP-Referer", c.cfg.OpenRouterReferer)
		}
		if c.cfg.OpenRouterTitle != "" {
			r.Header.Set("X-Title", c.cfg.OpenRouterTitle)
		}
		resp, err := c.hc.Do(r)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		lastStatus = resp.StatusCode

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lg.Warn("llm provider rate limited", slog.Int("status", resp.StatusCode))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			lg.Warn("llm provider 4xx", slog.Int("status", resp.StatusCode), slog.String("body", snippet(b)))
			return backoff.Permanent(fmt.Errorf("chat status %d", resp.StatusCode))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			lg.Error("llm provider non-2xx", slog.Int("status", resp.StatusCode), slog.String("body", snippet(b)))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(b, &out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode: %w", err))
		}
		return nil
	}

	start := time.Now()
	if err := backoff.Retry(op, backoff.WithContext(c.getBackoffConfig(), ctx)); err != nil {
		return "", fmt.Errorf("op=openrouter.Complete: %w", classify(ctx, lastStatus, err))
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("op=openrouter.Complete: %w: empty choices", domain.ErrSchemaInvalid)
	}
	if out.Model != "" && out.Model != c.cfg.OpenRouterModel {
		lg.Warn("model substitution detected", slog.String("actual_model", out.Model))
	}
	lg.Debug("llm call ok", slog.Duration("duration", time.Since(start)))
	return out.Choices[0].Message.Content, nil
}

func classify(ctx context.Context, status int, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", domain.ErrUpstreamRateLimit, err)
	default:
		return err
	}
}

func snippet(b []byte) string {
	if len(b) > snippetLen {
		b = b[:snippetLen]
	}
	return string(b)
}
