// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"index_backend/internal/feature/levels/domain/entity"
	"index_backend/internal/feature/levels/usecase"
)

// CachingLevelRepository decorates a LevelReader with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository. Index levels for past dates are
// immutable between batch runs, so a short TTL keeps reads cheap while a
// rebase or recompute becomes visible after expiry.
type CachingLevelRepository struct {
	inner     usecase.LevelReader
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.LevelReader = (*CachingLevelRepository)(nil)

// NewCachingLevelRepository decorates a LevelReader with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "levels".
func NewCachingLevelRepository(rdb *redis.Client, ttl time.Duration, inner usecase.LevelReader, namespace string) *CachingLevelRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "levels"
	}
	return &CachingLevelRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindRange retrieves level rows, checking cache first then falling back to the database.
func (c *CachingLevelRepository) FindRange(ctx context.Context, source, interval string, startDate, endDate *time.Time) ([]entity.IndexLevel, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindRange(ctx, source, interval, startDate, endDate)
	}

	key := c.cacheKey(source, interval, startDate, endDate)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.IndexLevel
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindRange(ctx, source, interval, startDate, endDate)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey generates a cache key for a specific query.
func (c *CachingLevelRepository) cacheKey(source, interval string, startDate, endDate *time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s",
		c.namespace,
		safe(source),
		safe(interval),
		boundKey(startDate),
		boundKey(endDate),
	)
}

// boundKey renders an optional date bound for use in a cache key.
func boundKey(d *time.Time) string {
	if d == nil {
		return "all"
	}
	return d.Format("20060102")
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
