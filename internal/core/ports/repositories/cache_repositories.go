package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// StatsCache holds recently computed market stats. Misses and cache failures are
// indistinguishable to callers: both fall through to the store.
type StatsCache interface {
	Get(ctx context.Context, key string) (*domain.MarketStats, bool)
	Set(ctx context.Context, key string, stats domain.MarketStats, ttl time.Duration)
}
