package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// BidTxStore defines bid operations available inside a transaction.
type BidTxStore interface {
	SaveBid(ctx context.Context, bid domain.Bid) error
	// FindBid reads a bid without locking it.
	FindBid(ctx context.Context, bidID string) (*domain.Bid, error)
	FindBidForUpdate(ctx context.Context, bidID string) (*domain.Bid, error)
	UpdateBidStatus(ctx context.Context, bidID string, status domain.BidStatus, now time.Time) error

	// RejectActiveBids moves every active bid on itemID except exceptBidID to rejected.
	RejectActiveBids(ctx context.Context, itemID string, exceptBidID string, now time.Time) (int, error)

	// ExpireBids moves active bids whose deadline passed to expired.
	ExpireBids(ctx context.Context, now time.Time) (int, error)
}
