// Package app assembles the HTTP router and readiness checks.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/httpserver"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func limitByIP(perMin int) func(http.Handler) http.Handler {
	if perMin <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(perMin, time.Minute)
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.RequestID())
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(httpserver.RequireJSON)
		v1.Get("/catalog", srv.CatalogHandler())
		v1.Get("/roles", srv.ListRolesHandler())
		v1.Get("/roles/{id}", srv.GetRoleHandler())

		v1.Group(func(g chi.Router) {
			g.Use(limitByIP(cfg.RateLimitPerMin))
			g.Post("/analyze", srv.AnalyzeUploadHandler())
			g.Post("/analyze/text", srv.AnalyzeTextHandler())
		})
		v1.Group(func(g chi.Router) {
			g.Use(limitByIP(cfg.RateLimitPerMin))
			g.Use(httpserver.AdminGuard(cfg))
			g.Post("/roles", srv.CreateRoleHandler())
			g.Put("/roles/{id}", srv.UpdateRoleHandler())
			g.Delete("/roles/{id}", srv.DeleteRoleHandler())
		})
	})

	return httpserver.SecurityHeaders(r)
}
