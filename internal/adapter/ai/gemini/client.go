// Package gemini implements domain.ChatClient with the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/config"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.0-flash"
)

// contentGenerator is the subset of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client sends prompts to a Gemini model and asks for JSON replies.
type Client struct {
	models contentGenerator
	model  string
	cfg    config.Config
}

// New creates a Client configured for the Gemini API backend.
func New(ctx context.Context, cfg config.Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.GeminiAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("op=gemini.New: %w: GEMINI_API_KEY missing", domain.ErrInvalidArgument)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("op=gemini.New: %w", err)
	}
	return newWithGenerator(client.Models, cfg), nil
}

func newWithGenerator(g contentGenerator, cfg config.Config) *Client {
	model := strings.TrimSpace(cfg.GeminiModel)
	if model == "" {
		model = defaultModel
	}
	return &Client{models: g, model: model, cfg: cfg}
}

// Provider returns "gemini".
func (c *Client) Provider() string { return providerName }

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Complete generates a JSON reply for prompt. 429 and 5xx API errors are
// retried with exponential backoff.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("op=gemini.Complete: %w: empty prompt", domain.ErrInvalidArgument)
	}
	gcfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	}

	var out string
	var lastCode int
	op := func() error {
		resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), gcfg)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			code := apiErrorCode(err)
			lastCode = code
			if code == http.StatusTooManyRequests || code >= 500 || code == 0 {
				return err
			}
			return backoff.Permanent(err)
		}
		out = responseText(resp)
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.MaxElapsedTime, expo.InitialInterval, expo.MaxInterval, expo.Multiplier = c.cfg.GetAIBackoffConfig()
	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			return "", fmt.Errorf("op=gemini.Complete: %w: %v", domain.ErrUpstreamTimeout, err)
		case lastCode == http.StatusTooManyRequests:
			return "", fmt.Errorf("op=gemini.Complete: %w: %v", domain.ErrUpstreamRateLimit, err)
		}
		return "", fmt.Errorf("op=gemini.Complete: %w", err)
	}
	if out == "" {
		return "", fmt.Errorf("op=gemini.Complete: %w: empty response", domain.ErrSchemaInvalid)
	}
	return out, nil
}

func apiErrorCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}

// responseText joins the text parts of every candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}
	return strings.TrimSpace(b.String())
}
