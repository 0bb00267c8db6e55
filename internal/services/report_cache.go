package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportCache stores rendered reports that can no longer change.
type ReportCache interface {
	// Get decodes a cached value into target and reports whether it was present.
	Get(ctx context.Context, key string, target interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type redisReportCache struct {
	rdb *redis.Client
}

// NewRedisReportCache wraps a go-redis client as a ReportCache.
func NewRedisReportCache(rdb *redis.Client) ReportCache {
	return &redisReportCache{rdb: rdb}
}

func (c *redisReportCache) Get(ctx context.Context, key string, target interface{}) (bool, error) {
	cached, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(cached, target); err != nil {
		return false, fmt.Errorf("decoding cache key %s: %w", key, err)
	}
	return true, nil
}

func (c *redisReportCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache key %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("writing cache key %s: %w", key, err)
	}
	return nil
}

func monthlySummaryCacheKey(month, department string, page, limit int) string {
	if department == "" {
		department = "all"
	}
	return fmt.Sprintf("report:monthly:%s:%s:%d:%d", month, department, page, limit)
}
