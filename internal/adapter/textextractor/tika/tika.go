// Package tika extracts plain text from PDF, DOCX and RTF resumes through an
// Apache Tika server.
package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/observability"
	"github.com/fairyhunter13/ats-resume-analyzer/pkg/textx"
)

const defaultBaseURL = "http://localhost:9998"

// Client is a minimal Apache Tika HTTP client implementing domain.TextExtractor.
// It performs PUT /tika with Accept: text/plain to retrieve extracted text.
// See: https://tika.apache.org/server/ for API details.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ domain.TextExtractor = (*Client)(nil)

// New constructs a Tika client with a default timeout.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Extract uploads data to Tika and returns sanitized plain text with every
// whitespace run, layout newlines included, collapsed to one space.
func (c *Client) Extract(ctx context.Context, fileName string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("op=tika.Extract: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if ct := contentTypeFromExt(filepath.Ext(fileName)); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("op=tika.Extract: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnsupportedMediaType || resp.StatusCode == http.StatusUnprocessableEntity:
		return "", fmt.Errorf("op=tika.Extract: %w: tika status %d", domain.ErrUnsupportedMedia, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("op=tika.Extract: tika status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("op=tika.Extract: read: %w", err)
	}
	text := textx.CollapseWhitespace(textx.SanitizeText(string(b)))
	observability.LoggerFromContext(ctx).Debug("tika extraction done",
		slog.String("file", fileName),
		slog.Int("bytes_in", len(data)),
		slog.Int("chars_out", len(text)),
		slog.Duration("duration", time.Since(start)))
	return text, nil
}

// Ping checks that the Tika server answers GET /version.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/version", nil)
	if err != nil {
		return fmt.Errorf("op=tika.Ping: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("op=tika.Ping: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("op=tika.Ping: status %d", resp.StatusCode)
	}
	return nil
}

func contentTypeFromExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".rtf":
		return "application/rtf"
	case ".txt":
		return "text/plain"
	case "":
		return ""
	default:
		return mime.TypeByExtension(ext)
	}
}
