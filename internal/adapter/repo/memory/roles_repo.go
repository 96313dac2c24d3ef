// Package memory provides an in-process RoleRepository used when no database
// is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

// RoleRepo keeps roles in a map guarded by a RWMutex.
type RoleRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Role
	now  func() time.Time
}

// NewRoleRepo returns an empty repository seeded with roles, if any.
func NewRoleRepo(seed ...domain.Role) *RoleRepo {
	r := &RoleRepo{byID: map[string]domain.Role{}, now: func() time.Time { return time.Now().UTC() }}
	for _, role := range seed {
		_, _ = r.Create(context.Background(), role)
	}
	return r
}

func clone(r domain.Role) domain.Role {
	r.Keywords = append([]string(nil), r.Keywords...)
	return r
}

// List returns all roles sorted by name.
func (r *RoleRepo) List(_ domain.Context) ([]domain.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Role, 0, len(r.byID))
	for _, role := range r.byID {
		out = append(out, clone(role))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get loads a role by id.
func (r *RoleRepo) Get(_ domain.Context, id string) (domain.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.byID[id]
	if !ok {
		return domain.Role{}, fmt.Errorf("op=role.get: %w", domain.ErrNotFound)
	}
	return clone(role), nil
}

// GetByName loads a role by its exact name.
func (r *RoleRepo) GetByName(_ domain.Context, name string) (domain.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, role := range r.byID {
		if role.Name == name {
			return clone(role), nil
		}
	}
	return domain.Role{}, fmt.Errorf("op=role.get_by_name: %w", domain.ErrNotFound)
}

// Create stores a new role; names must be unique.
func (r *RoleRepo) Create(_ domain.Context, role domain.Role) (domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Name == role.Name {
			return domain.Role{}, fmt.Errorf("op=role.create: %w: role %q exists", domain.ErrConflict, role.Name)
		}
	}
	if role.ID == "" {
		role.ID = uuid.New().String()
	}
	now := r.now()
	role.CreatedAt, role.UpdatedAt = now, now
	role = clone(role)
	r.byID[role.ID] = role
	return clone(role), nil
}

// UpdateKeywords replaces the keywords of an existing role.
func (r *RoleRepo) UpdateKeywords(_ domain.Context, id string, keywords []string) (domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.byID[id]
	if !ok {
		return domain.Role{}, fmt.Errorf("op=role.update_keywords: %w", domain.ErrNotFound)
	}
	role.Keywords = append([]string(nil), keywords...)
	role.UpdatedAt = r.now()
	r.byID[id] = role
	return clone(role), nil
}

// Delete removes a role by id.
func (r *RoleRepo) Delete(_ domain.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("op=role.delete: %w", domain.ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}
