// Package ratelimiter provides a Redis-backed token bucket shared by every
// instance of the service, used to keep LLM calls within a provider quota.
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a call identified by key may proceed now.
type Limiter interface {
	Allow(ctx context.Context, key string, cost int64) (allowed bool, retryAfter time.Duration, err error)
}

// BucketConfig describes one token bucket. A zero config disables limiting.
type BucketConfig struct {
	Capacity   int64
	RefillRate float64 // tokens per second
}

// NewBucketConfigFromPerMinute returns a bucket holding perMinute tokens that
// refills completely once a minute.
func NewBucketConfigFromPerMinute(perMinute int) BucketConfig {
	if perMinute <= 0 {
		return BucketConfig{}
	}
	return BucketConfig{
		Capacity:   int64(perMinute),
		RefillRate: float64(perMinute) / 60.0,
	}
}

// Redis state per bucket: hash {tokens, ts}. Returns {allowed, retry_after_ms}.
const tokenBucketScript = `
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1]) or capacity
local ts = tonumber(data[2]) or now

local elapsed = math.max(0, now - ts)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
local retry_ms = 0
if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
else
  retry_ms = math.ceil((cost - tokens) / rate * 1000)
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts", tostring(now))
redis.call("EXPIRE", KEYS[1], math.ceil(capacity / rate) + 60)
return { allowed, retry_ms }
`

// RedisBucketLimiter implements Limiter with a Lua token bucket in Redis.
type RedisBucketLimiter struct {
	rdb     redis.Scripter
	script  *redis.Script
	now     func() time.Time
	mu      sync.RWMutex
	buckets map[string]BucketConfig
}

// NewRedisBucketLimiter returns nil when rdb is nil; a nil limiter allows
// every call.
func NewRedisBucketLimiter(rdb redis.Scripter, buckets map[string]BucketConfig) *RedisBucketLimiter {
	if rdb == nil {
		return nil
	}
	if buckets == nil {
		buckets = map[string]BucketConfig{}
	}
	return &RedisBucketLimiter{
		rdb:     rdb,
		script:  redis.NewScript(tokenBucketScript),
		now:     time.Now,
		buckets: buckets,
	}
}

// SetBucketConfig updates or creates the bucket for key.
func (l *RedisBucketLimiter) SetBucketConfig(key string, cfg BucketConfig) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets[key] = cfg
}

// Allow takes cost tokens from the bucket for key. Unknown keys, disabled
// buckets and Redis failures all allow the call; Redis errors are returned
// alongside allowed=true so callers can log them.
func (l *RedisBucketLimiter) Allow(ctx context.Context, key string, cost int64) (bool, time.Duration, error) {
	if l == nil {
		return true, 0, nil
	}
	l.mu.RLock()
	cfg, ok := l.buckets[key]
	l.mu.RUnlock()
	if !ok || cfg.Capacity <= 0 || cfg.RefillRate <= 0 {
		return true, 0, nil
	}
	if cost <= 0 {
		cost = 1
	}

	nowSec := float64(l.now().UnixNano()) / 1e9
	vals, err := l.script.Run(ctx, l.rdb, []string{"rate:" + key}, cfg.Capacity, cfg.RefillRate, nowSec, cost).Int64Slice()
	if err != nil {
		slog.Error("rate limiter script error", slog.String("key", key), slog.Any("error", err))
		return true, 0, fmt.Errorf("op=ratelimiter.Allow: %w", err)
	}
	if len(vals) < 2 {
		return true, 0, fmt.Errorf("op=ratelimiter.Allow: unexpected script result %v", vals)
	}
	return vals[0] == 1, time.Duration(vals[1]) * time.Millisecond, nil
}
