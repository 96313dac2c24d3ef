// Package redis caches role keyword sets in Redis in front of a
// domain.RoleRepository.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
	obsctx "github.com/fairyhunter13/ats-resume-analyzer/internal/observability"
)

const keyPrefix = "ats:role:"

// RoleCache decorates a RoleRepository with a read-through cache for
// GetByName, the lookup made on every analysis. Writes go to the repository
// and then drop the affected entry. Redis failures are logged and the
// repository answers instead.
type RoleCache struct {
	domain.RoleRepository
	rdb goredis.Cmdable
	ttl time.Duration
}

var _ domain.RoleRepository = (*RoleCache)(nil)

// NewRoleCache wraps next. A non-positive ttl defaults to ten minutes.
func NewRoleCache(next domain.RoleRepository, rdb goredis.Cmdable, ttl time.Duration) *RoleCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RoleCache{RoleRepository: next, rdb: rdb, ttl: ttl}
}

type cachedRole struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Keywords  []string  `json:"keywords"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func cacheKey(name string) string { return keyPrefix + name }

// GetByName serves from Redis when possible. Not-found results are not cached
// so that a role created later becomes visible immediately.
func (c *RoleCache) GetByName(ctx context.Context, name string) (domain.Role, error) {
	lg := obsctx.LoggerFromContext(ctx)
	raw, err := c.rdb.Get(ctx, cacheKey(name)).Bytes()
	switch {
	case err == nil:
		var cr cachedRole
		if jerr := json.Unmarshal(raw, &cr); jerr == nil {
			observability.ObserveCacheLookup("hit")
			return domain.Role(cr), nil
		}
		observability.ObserveCacheLookup("error")
		lg.Warn("keyword cache entry corrupt", slog.String("role", name))
	case errors.Is(err, goredis.Nil):
		observability.ObserveCacheLookup("miss")
	default:
		observability.ObserveCacheLookup("error")
		lg.Warn("keyword cache read failed", slog.String("role", name), slog.Any("error", err))
	}

	role, err := c.RoleRepository.GetByName(ctx, name)
	if err != nil {
		return domain.Role{}, err
	}
	c.store(ctx, role)
	return role, nil
}

func (c *RoleCache) store(ctx context.Context, role domain.Role) {
	b, err := json.Marshal(cachedRole(role))
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(role.Name), b, c.ttl).Err(); err != nil {
		obsctx.LoggerFromContext(ctx).Warn("keyword cache write failed", slog.String("role", role.Name), slog.Any("error", err))
	}
}

// Invalidate drops the cached entry for roleName.
func (c *RoleCache) Invalidate(ctx context.Context, roleName string) error {
	if err := c.rdb.Del(ctx, cacheKey(roleName)).Err(); err != nil {
		return fmt.Errorf("op=keyword_cache.invalidate: %w", err)
	}
	return nil
}

// Create stores the role and drops any stale entry under its name.
func (c *RoleCache) Create(ctx context.Context, r domain.Role) (domain.Role, error) {
	role, err := c.RoleRepository.Create(ctx, r)
	if err != nil {
		return domain.Role{}, err
	}
	c.invalidateQuietly(ctx, role.Name)
	return role, nil
}

// UpdateKeywords updates the repository and drops the cached entry.
func (c *RoleCache) UpdateKeywords(ctx context.Context, id string, keywords []string) (domain.Role, error) {
	role, err := c.RoleRepository.UpdateKeywords(ctx, id, keywords)
	if err != nil {
		return domain.Role{}, err
	}
	c.invalidateQuietly(ctx, role.Name)
	return role, nil
}

// Delete removes the role and its cached entry.
func (c *RoleCache) Delete(ctx context.Context, id string) error {
	role, err := c.RoleRepository.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := c.RoleRepository.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidateQuietly(ctx, role.Name)
	return nil
}

func (c *RoleCache) invalidateQuietly(ctx context.Context, name string) {
	if err := c.Invalidate(ctx, name); err != nil {
		obsctx.LoggerFromContext(ctx).Warn("keyword cache invalidation failed", slog.String("role", name), slog.Any("error", err))
	}
}
