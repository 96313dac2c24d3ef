package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

type roleResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Keywords  []string  `json:"keywords"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toRoleResponse(r domain.Role) roleResponse {
	kws := r.Keywords
	if kws == nil {
		kws = []string{}
	}
	return roleResponse{ID: r.ID, Role: r.Name, Keywords: kws, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// ListRolesHandler returns all stored roles.
func (s *Server) ListRolesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roles, err := s.Roles.List(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]roleResponse, 0, len(roles))
		for _, role := range roles {
			out = append(out, toRoleResponse(role))
		}
		writeJSON(w, http.StatusOK, map[string]any{"roles": out})
	}
}

// GetRoleHandler returns one role by id.
func (s *Server) GetRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := s.Roles.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toRoleResponse(role))
	}
}

// CreateRoleHandler stores a new role from {role, keywords}.
func (s *Server) CreateRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoleRequest
		if details, err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		role, err := s.Roles.Create(r.Context(), req.Role, req.Keywords)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		LoggerFrom(r).Info("role created", "role_id", role.ID, "role", role.Name, "keywords", len(role.Keywords))
		w.Header().Set("Location", "/v1/roles/"+role.ID)
		writeJSON(w, http.StatusCreated, toRoleResponse(role))
	}
}

// UpdateRoleHandler replaces a role's keywords from {keywords}.
func (s *Server) UpdateRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateKeywordsRequest
		if details, err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		role, err := s.Roles.UpdateKeywords(r.Context(), chi.URLParam(r, "id"), req.Keywords)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		LoggerFrom(r).Info("role keywords updated", "role_id", role.ID, "keywords", len(role.Keywords))
		writeJSON(w, http.StatusOK, toRoleResponse(role))
	}
}

// DeleteRoleHandler removes a role.
func (s *Server) DeleteRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := s.Roles.Delete(r.Context(), id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		LoggerFrom(r).Info("role deleted", "role_id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}
