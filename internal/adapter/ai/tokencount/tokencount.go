// Package tokencount measures and trims prompt text in model tokens.
//
// It uses tiktoken-go with the cl100k_base encoding, loaded from the embedded
// BPE ranks so no network access is needed at runtime. When the encoding
// cannot be loaded the counter degrades to an estimate of four bytes per token.
package tokencount

import (
	"log/slog"
	"sync"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const (
	defaultEncoding = "cl100k_base"
	bytesPerToken   = 4
)

// Counter counts and truncates text by token budget. Safe for concurrent use.
type Counter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewCounter creates a new token counter instance.
func NewCounter() *Counter { return &Counter{} }

// DefaultCounter is a shared counter instance.
var DefaultCounter = NewCounter()

func (c *Counter) encoding() *tiktoken.Tiktoken {
	c.once.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
		enc, err := tiktoken.GetEncoding(defaultEncoding)
		if err != nil {
			slog.Warn("tiktoken encoding unavailable, estimating tokens",
				slog.String("encoding", defaultEncoding),
				slog.Any("error", err))
			return
		}
		c.enc = enc
	})
	return c.enc
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if enc := c.encoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (len(text) + bytesPerToken - 1) / bytesPerToken
}

// Truncate returns the longest prefix of text that fits in maxTokens. Text
// within budget, or a non-positive budget, is returned unchanged.
func (c *Counter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}
	if enc := c.encoding(); enc != nil {
		tokens := enc.Encode(text, nil, nil)
		if len(tokens) <= maxTokens {
			return text
		}
		return enc.Decode(tokens[:maxTokens])
	}
	limit := maxTokens * bytesPerToken
	if len(text) <= limit {
		return text
	}
	// back off to a rune boundary
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
