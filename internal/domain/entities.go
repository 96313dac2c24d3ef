// Package domain holds the entities, error taxonomy and ports shared by the
// use cases and adapters.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/ats"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUnsupportedMedia    = errors.New("unsupported media type")
	ErrRateLimited         = errors.New("rate limited")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamRateLimit   = errors.New("upstream rate limit")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrSchemaInvalid       = errors.New("schema invalid")
	ErrInternal            = errors.New("internal error")
)

// Role is a job role and the keywords a resume for it should mention.
// Invariants: Name non-empty and unique; keywords trimmed and unique
// case-insensitively, original casing kept for display.
type Role struct {
	ID        string
	Name      string
	Keywords  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repositories (ports)

type RoleRepository interface {
	List(ctx Context) ([]Role, error)
	Get(ctx Context, id string) (Role, error)
	GetByName(ctx Context, name string) (Role, error)
	Create(ctx Context, r Role) (Role, error)
	UpdateKeywords(ctx Context, id string, keywords []string) (Role, error)
	Delete(ctx Context, id string) error
}

// TextExtractor (port)
// Extract returns plain text for a document identified by its original file
// name. Implementations may call external services (e.g., Tika).
type TextExtractor interface {
	Extract(ctx Context, fileName string, data []byte) (string, error)
}

// ChatClient sends one prompt to a language model and returns its raw reply.
type ChatClient interface {
	Complete(ctx Context, prompt string) (string, error)
	Provider() string
}

// Enricher asks a language model for an independent assessment of a resume.
// Any error means the caller keeps its own analysis unchanged.
type Enricher interface {
	Enrich(ctx Context, resumeText, role string, keywords []string) (ats.Enrichment, error)
}

// Context is an alias so ports can be declared without importing context
// everywhere.
type Context = context.Context
