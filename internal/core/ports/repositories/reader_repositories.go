package repositories

import (
	"context"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// StatsScope selects a series or a whole collection. Exactly one field is set.
type StatsScope struct {
	SeriesID     string
	CollectionID string
}

// Reader serves committed state outside any transaction.
type Reader interface {
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	GetSeries(ctx context.Context, seriesID string) (*domain.Series, error)
	GetItem(ctx context.Context, itemID string) (*domain.Item, error)
	GetPresale(ctx context.Context, presaleID string) (*domain.PreSale, error)

	// ListLedgerEntries pages an account's entries newest first.
	ListLedgerEntries(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)

	StatsReader
}

// StatsReader computes derived market metrics from committed rows.
type StatsReader interface {
	// FloorListing returns the lowest list price among listed items; ok is false if none is listed.
	FloorListing(ctx context.Context, scope StatsScope) (price int64, ok bool, err error)

	// BasePrice returns the series price, or the lowest series price of a collection.
	BasePrice(ctx context.Context, scope StatsScope) (int64, error)

	// SalesVolume sums completed order prices and counts them.
	SalesVolume(ctx context.Context, scope StatsScope) (volume int64, sales int64, err error)

	// PriceHistory returns an item's completed orders oldest first.
	PriceHistory(ctx context.Context, itemID string) ([]domain.PricePoint, error)
}
