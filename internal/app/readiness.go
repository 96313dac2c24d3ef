package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/httpserver"
)

// Pinger is the minimal interface for a dependency capable of Ping, such as
// a pgx pool or the Tika client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BuildReadinessChecks returns the db, redis and tika readiness checks. A nil
// dependency yields a nil check, reported as not configured.
func BuildReadinessChecks(pool Pinger, rdb goredis.Cmdable, tika Pinger) (db, redis, tikaCheck httpserver.CheckFunc) {
	if pool != nil {
		db = func(ctx context.Context) error { return pool.Ping(ctx) }
	}
	if rdb != nil {
		redis = func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("op=readiness.redis: %w", err)
			}
			return nil
		}
	}
	if tika != nil {
		tikaCheck = func(ctx context.Context) error { return tika.Ping(ctx) }
	}
	return db, redis, tikaCheck
}
