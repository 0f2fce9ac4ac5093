package services

import (
	"context"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// DepositPollerSvc reconciles inbound external payments.
type DepositPollerSvc interface {
	PollOnce(ctx context.Context) (domain.PollReport, error)
}

// WithdrawalSvc executes outbound payments.
type WithdrawalSvc interface {
	Withdraw(ctx context.Context, accountID, destination string, amount int64) (*domain.LedgerEntry, error)
}

// StatsSvc serves derived, possibly stale, market metrics.
type StatsSvc interface {
	FloorPrice(ctx context.Context, seriesID string) (int64, error)
	CollectionFloorPrice(ctx context.Context, collectionID string) (int64, error)
	Volume(ctx context.Context, seriesID string) (int64, error)
	CollectionVolume(ctx context.Context, collectionID string) (int64, error)
	SeriesStats(ctx context.Context, seriesID string) (*domain.MarketStats, error)
	CollectionStats(ctx context.Context, collectionID string) (*domain.MarketStats, error)
	PriceHistory(ctx context.Context, itemID string) ([]domain.PricePoint, error)
}
