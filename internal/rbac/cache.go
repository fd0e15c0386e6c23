package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/univhr/hrcore/internal/config"
)

// Cache stores resolutions per employee. Implementations are best effort:
// failures are logged and treated as misses.
type Cache interface {
	Get(ctx context.Context, employeeID uint) (*Resolution, bool)
	Set(ctx context.Context, r *Resolution)
	Invalidate(ctx context.Context, employeeID uint)
	InvalidateAll(ctx context.Context)
}

const scanBatch = 100

type cacheEntry struct {
	Resolution *Resolution `json:"resolution"`
	Expires    *time.Time  `json:"expires,omitempty"`
}

// RedisCache is a Cache backed by redis.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a redis backed resolution cache.
func NewRedisCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// DialRedis connects to the configured redis server and checks it answers.
func DialRedis(ctx context.Context, cfg config.Cache) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func (c *RedisCache) pattern() string {
	return c.prefix + ":rbac:resolution:*"
}

func (c *RedisCache) key(employeeID uint) string {
	return fmt.Sprintf("%s:rbac:resolution:%d", c.prefix, employeeID)
}

// Get returns the cached resolution of an employee.
func (c *RedisCache) Get(ctx context.Context, employeeID uint) (*Resolution, bool) {
	raw, err := c.client.Get(ctx, c.key(employeeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}

	if err != nil {
		log.Warn().Err(err).Uint("employee_id", employeeID).Msg("resolution cache read failed")
		return nil, false
	}

	var e cacheEntry
	if err = json.Unmarshal(raw, &e); err != nil || e.Resolution == nil {
		log.Warn().Err(err).Uint("employee_id", employeeID).Msg("resolution cache entry is corrupt")
		return nil, false
	}

	e.Resolution.Expires = e.Expires

	return e.Resolution, true
}

// Set stores a resolution for the configured TTL, shortened to the resolution's
// expiry when that comes first.
func (c *RedisCache) Set(ctx context.Context, r *Resolution) {
	ttl := c.ttl
	if r.Expires != nil {
		left := time.Until(*r.Expires)
		if left <= 0 {
			return
		}

		if ttl <= 0 || left < ttl {
			ttl = left
		}
	}

	raw, err := json.Marshal(cacheEntry{Resolution: r, Expires: r.Expires})
	if err != nil {
		log.Warn().Err(err).Uint("employee_id", r.EmployeeID).Msg("failed to encode resolution")
		return
	}

	if err = c.client.Set(ctx, c.key(r.EmployeeID), raw, ttl).Err(); err != nil {
		log.Warn().Err(err).Uint("employee_id", r.EmployeeID).Msg("resolution cache write failed")
	}
}

// Invalidate drops the cached resolution of one employee.
func (c *RedisCache) Invalidate(ctx context.Context, employeeID uint) {
	if err := c.client.Del(ctx, c.key(employeeID)).Err(); err != nil {
		log.Warn().Err(err).Uint("employee_id", employeeID).Msg("resolution cache invalidation failed")
	}
}

// InvalidateAll drops every cached resolution.
func (c *RedisCache) InvalidateAll(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, c.pattern(), scanBatch).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Msg("resolution cache scan failed")
		return
	}

	if len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Int("keys", len(keys)).Msg("resolution cache invalidation failed")
	}
}

func (s *Service) invalidate(ctx context.Context, employeeID uint) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, employeeID)
	}
}

func (s *Service) invalidateAll(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
}
