package usecase

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/catalog"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

// Role catalog limits.
const (
	MaxRoleNameLen = 100
	MaxKeywords    = 200
	MaxKeywordLen  = 100
)

// RoleService manages role keyword sets and resolves the keywords used for
// an analysis.
type RoleService struct {
	Repo domain.RoleRepository
}

// NewRoleService constructs a RoleService with the given repo.
func NewRoleService(r domain.RoleRepository) RoleService { return RoleService{Repo: r} }

// List returns all stored roles sorted by name.
func (s RoleService) List(ctx domain.Context) ([]domain.Role, error) {
	return s.Repo.List(ctx)
}

// Get returns one stored role.
func (s RoleService) Get(ctx domain.Context, id string) (domain.Role, error) {
	return s.Repo.Get(ctx, id)
}

// Create validates and stores a new role. Duplicate names yield ErrConflict.
func (s RoleService) Create(ctx domain.Context, name string, keywords []string) (domain.Role, error) {
	name = strings.TrimSpace(name)
	if err := validateRoleName(name); err != nil {
		return domain.Role{}, err
	}
	kws, err := validateKeywords(keywords)
	if err != nil {
		return domain.Role{}, err
	}
	return s.Repo.Create(ctx, domain.Role{Name: name, Keywords: kws})
}

// UpdateKeywords validates and replaces the keyword set of a role.
func (s RoleService) UpdateKeywords(ctx domain.Context, id string, keywords []string) (domain.Role, error) {
	kws, err := validateKeywords(keywords)
	if err != nil {
		return domain.Role{}, err
	}
	return s.Repo.UpdateKeywords(ctx, id, kws)
}

// Delete removes a role.
func (s RoleService) Delete(ctx domain.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// KeywordsFor resolves the keyword set for roleName: a stored role wins (even
// with no keywords), then the built-in catalog, then the generic defaults.
func (s RoleService) KeywordsFor(ctx domain.Context, roleName string) ([]string, error) {
	roleName = strings.TrimSpace(roleName)
	role, err := s.Repo.GetByName(ctx, roleName)
	switch {
	case err == nil:
		return role.Keywords, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("op=role.keywords_for: %w", err)
	}
	if kws, ok := catalog.Lookup(roleName); ok {
		return kws, nil
	}
	return append([]string(nil), catalog.DefaultKeywords...), nil
}

func validateRoleName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: role name is required", domain.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(name) > MaxRoleNameLen {
		return fmt.Errorf("%w: role name longer than %d characters", domain.ErrInvalidArgument, MaxRoleNameLen)
	}
	return nil
}

func validateKeywords(keywords []string) ([]string, error) {
	kws := domain.CleanKeywords(keywords)
	if len(kws) == 0 {
		return nil, fmt.Errorf("%w: at least one keyword is required", domain.ErrInvalidArgument)
	}
	if len(kws) > MaxKeywords {
		return nil, fmt.Errorf("%w: more than %d keywords", domain.ErrInvalidArgument, MaxKeywords)
	}
	for _, k := range kws {
		if utf8.RuneCountInString(k) > MaxKeywordLen {
			return nil, fmt.Errorf("%w: keyword %.20q longer than %d characters", domain.ErrInvalidArgument, k, MaxKeywordLen)
		}
	}
	return kws, nil
}
