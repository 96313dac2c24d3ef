package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/catalog"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/config"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/usecase"
)

const (
	// multipartOverhead is headroom for form fields and boundaries on top of
	// the file size limit.
	multipartOverhead = 1 << 20
	maxJSONBody       = 2 << 20
	maxRoleNameField  = 100
)

// CheckFunc probes one dependency for readiness.
type CheckFunc func(ctx context.Context) error

// Server aggregates handlers dependencies.
type Server struct {
	Cfg        config.Config
	Analyzer   usecase.AnalyzeService
	Roles      usecase.RoleService
	Extractor  domain.TextExtractor
	DBCheck    CheckFunc
	RedisCheck CheckFunc
	TikaCheck  CheckFunc
}

// NewServer constructs an HTTP server with all handlers and checks wired.
// Nil checks are reported as not configured and do not fail readiness.
func NewServer(cfg config.Config, analyzer usecase.AnalyzeService, roles usecase.RoleService, extractor domain.TextExtractor, dbCheck, redisCheck, tikaCheck CheckFunc) *Server {
	return &Server{Cfg: cfg, Analyzer: analyzer, Roles: roles, Extractor: extractor, DBCheck: dbCheck, RedisCheck: redisCheck, TikaCheck: tikaCheck}
}

func (s *Server) maxUploadBytes() int64 {
	mb := s.Cfg.MaxUploadMB
	if mb <= 0 {
		mb = 10
	}
	return mb << 20
}

// AnalyzeUploadHandler scores an uploaded resume file (multipart fields
// "resume" and "jobRole").
func (s *Server) AnalyzeUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.maxUploadBytes()
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if isTooLarge(err) {
				writeError(w, r, errPayloadTooLarge, map[string]int64{"max_mb": maxBytes >> 20})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		role := strings.TrimSpace(r.FormValue("jobRole"))
		if role == "" || len(role) > maxRoleNameField {
			writeError(w, r, fmt.Errorf("%w: jobRole is required (max %d characters)", domain.ErrInvalidArgument, maxRoleNameField), map[string]string{"jobRole": "required"})
			return
		}
		file, header, err := r.FormFile("resume")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: resume file required", domain.ErrInvalidArgument), map[string]string{"resume": "required"})
			return
		}
		defer func() { _ = file.Close() }()
		if header.Size > maxBytes {
			writeError(w, r, errPayloadTooLarge, map[string]int64{"max_mb": maxBytes >> 20})
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: resume read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if err := checkUpload(header.Filename, data); err != nil {
			writeError(w, r, err, map[string]string{"filename": header.Filename})
			return
		}

		ctx := r.Context()
		text := extractText(ctx, s.Extractor, header.Filename, data)
		LoggerFrom(r).Debug("resume extracted",
			slog.String("file", header.Filename),
			slog.Int("bytes", len(data)),
			slog.Int("chars", len(text)))
		s.respondAnalysis(w, r, usecase.AnalyzeInput{Text: text, Role: role, Source: "upload"})
	}
}

// AnalyzeTextHandler scores resume text posted as JSON {text, jobRole}.
func (s *Server) AnalyzeTextHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeTextRequest
		if details, err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		role := strings.TrimSpace(req.JobRole)
		if role == "" {
			writeError(w, r, fmt.Errorf("%w: jobRole is required", domain.ErrInvalidArgument), map[string]string{"jobRole": "required"})
			return
		}
		s.respondAnalysis(w, r, usecase.AnalyzeInput{Text: req.Text, Role: role, Source: "text"})
	}
}

func (s *Server) respondAnalysis(w http.ResponseWriter, r *http.Request, in usecase.AnalyzeInput) {
	rep, err := s.Analyzer.Analyze(r.Context(), in)
	if err != nil {
		writeError(w, r, fmt.Errorf("analyze: %w", err), nil)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "too large")
}

// CatalogHandler lists the built-in role names and the generic keyword set.
func (s *Server) CatalogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"roles":           catalog.Roles(),
			"defaultKeywords": catalog.DefaultKeywords,
		})
	}
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler returns a readiness handler that probes DB, Redis and Tika.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	probes := []struct {
		name string
		fn   CheckFunc
	}{{"db", s.DBCheck}, {"redis", s.RedisCheck}, {"tika", s.TikaCheck}}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, len(probes))
		ok := true
		for _, p := range probes {
			if p.fn == nil {
				checks = append(checks, check{Name: p.name, OK: true, Details: "not configured"})
				continue
			}
			if err := p.fn(ctx); err != nil {
				ok = false
				checks = append(checks, check{Name: p.name, OK: false, Details: err.Error()})
				continue
			}
			checks = append(checks, check{Name: p.name, OK: true})
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
