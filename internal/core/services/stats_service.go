package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
)

// DefaultStatsCacheTTL bounds how stale cached stats may be.
const DefaultStatsCacheTTL = 30 * time.Second

type statsService struct {
	BaseService
	reader portsrepo.StatsReader
	cache  portsrepo.StatsCache
	ttl    time.Duration
}

// NewStatsService creates a stats reader over committed state. cache may be nil.
func NewStatsService(reader portsrepo.StatsReader, cache portsrepo.StatsCache, ttl time.Duration, opts ...Option) portssvc.StatsSvc {
	if ttl <= 0 {
		ttl = DefaultStatsCacheTTL
	}
	return &statsService{
		BaseService: newBaseService(opts),
		reader:      reader,
		cache:       cache,
		ttl:         ttl,
	}
}

var _ portssvc.StatsSvc = (*statsService)(nil)

func (s *statsService) FloorPrice(ctx context.Context, seriesID string) (int64, error) {
	stats, err := s.SeriesStats(ctx, seriesID)
	if err != nil {
		return 0, err
	}
	return stats.FloorPrice, nil
}

func (s *statsService) CollectionFloorPrice(ctx context.Context, collectionID string) (int64, error) {
	stats, err := s.CollectionStats(ctx, collectionID)
	if err != nil {
		return 0, err
	}
	return stats.FloorPrice, nil
}

func (s *statsService) Volume(ctx context.Context, seriesID string) (int64, error) {
	stats, err := s.SeriesStats(ctx, seriesID)
	if err != nil {
		return 0, err
	}
	return stats.Volume, nil
}

func (s *statsService) CollectionVolume(ctx context.Context, collectionID string) (int64, error) {
	stats, err := s.CollectionStats(ctx, collectionID)
	if err != nil {
		return 0, err
	}
	return stats.Volume, nil
}

func (s *statsService) SeriesStats(ctx context.Context, seriesID string) (*domain.MarketStats, error) {
	if seriesID == "" {
		return nil, fmt.Errorf("%w: series id is required", apperrors.ErrValidation)
	}
	return s.stats(ctx, "series:"+seriesID, seriesID, portsrepo.StatsScope{SeriesID: seriesID})
}

func (s *statsService) CollectionStats(ctx context.Context, collectionID string) (*domain.MarketStats, error) {
	if collectionID == "" {
		return nil, fmt.Errorf("%w: collection id is required", apperrors.ErrValidation)
	}
	return s.stats(ctx, "collection:"+collectionID, collectionID, portsrepo.StatsScope{CollectionID: collectionID})
}

func (s *statsService) PriceHistory(ctx context.Context, itemID string) ([]domain.PricePoint, error) {
	points, err := s.reader.PriceHistory(ctx, itemID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load price history", slog.String("item_id", itemID))
		return nil, err
	}
	return points, nil
}

// stats computes floor and volume for scope. The floor is the cheapest listing,
// or the primary price when nothing is listed.
func (s *statsService) stats(ctx context.Context, key, scopeID string, scope portsrepo.StatsScope) (*domain.MarketStats, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	stats := domain.MarketStats{ScopeID: scopeID}
	floor, listed, err := s.reader.FloorListing(ctx, scope)
	if err != nil {
		return nil, err
	}
	if listed {
		stats.FloorPrice = floor
		stats.FromListing = true
	} else {
		base, err := s.reader.BasePrice(ctx, scope)
		if err != nil {
			return nil, err
		}
		stats.FloorPrice = base
	}
	stats.Volume, stats.Sales, err = s.reader.SalesVolume(ctx, scope)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, stats, s.ttl)
	}
	s.LogDebug(ctx, "Computed market stats", slog.String("scope", key), slog.Int64("floor", stats.FloorPrice))
	return &stats, nil
}
