package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// CatalogTxStore defines series and item operations available inside a transaction.
type CatalogTxStore interface {
	FindSeries(ctx context.Context, seriesID string) (*domain.Series, error)
	SaveSeries(ctx context.Context, series domain.Series) error

	// IncrementMinted raises MintedCount by n. It fails with apperrors.ErrConflict
	// instead of exceeding TotalSupply.
	IncrementMinted(ctx context.Context, seriesID string, n int, now time.Time) error

	// ListMintNumbers returns the mint numbers already assigned in a series.
	ListMintNumbers(ctx context.Context, seriesID string) ([]int, error)

	// SaveItem persists a newly minted item. A duplicate (series, mint number) yields ErrConflictDetected.
	SaveItem(ctx context.Context, item domain.Item) error

	FindItemForUpdate(ctx context.Context, itemID string) (*domain.Item, error)

	// FindItemByMintNumber locks the item holding a mint number; ErrNotFound if unminted.
	FindItemByMintNumber(ctx context.Context, seriesID string, mintNumber int) (*domain.Item, error)

	// UpdateItem writes owner and listing fields.
	UpdateItem(ctx context.Context, item domain.Item) error
}
