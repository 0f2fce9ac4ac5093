// Package cache keeps derived read models in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	"github.com/SscSPs/collectibles_market/internal/middleware"
	"github.com/redis/go-redis/v9"
)

const statsKeyPrefix = "market:stats:"

// RedisStatsCache stores market stats as JSON strings with a TTL.
type RedisStatsCache struct {
	client *redis.Client
}

func NewRedisStatsCache(client *redis.Client) *RedisStatsCache {
	return &RedisStatsCache{client: client}
}

var _ portsrepo.StatsCache = (*RedisStatsCache)(nil)

func (c *RedisStatsCache) Get(ctx context.Context, key string) (*domain.MarketStats, bool) {
	raw, err := c.client.Get(ctx, statsKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			middleware.GetLoggerFromCtx(ctx).Warn("Stats cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil, false
	}
	var stats domain.MarketStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (c *RedisStatsCache) Set(ctx context.Context, key string, stats domain.MarketStats, ttl time.Duration) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statsKeyPrefix+key, raw, ttl).Err(); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Stats cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}
