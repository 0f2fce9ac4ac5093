package services

import (
	"context"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// PurchaseSvc defines the funds-moving acquisitions.
type PurchaseSvc interface {
	// Mint assigns a random unassigned mint number of seriesID to buyerID.
	Mint(ctx context.Context, seriesID, buyerID string) (*domain.Purchase, error)

	// Buy purchases a listed item on the secondary market.
	Buy(ctx context.Context, itemID, buyerID string) (*domain.Purchase, error)

	// BuyByNumber mints mintNumber if unassigned, otherwise buys it if listed.
	BuyByNumber(ctx context.Context, seriesID string, mintNumber int, buyerID string) (*domain.Purchase, error)
}

// ListingSvc defines owner-only operations without funds movement.
type ListingSvc interface {
	List(ctx context.Context, itemID, ownerID string, price int64) (*domain.Item, error)
	Delist(ctx context.Context, itemID, ownerID string) (*domain.Item, error)
	Transfer(ctx context.Context, itemID, ownerID, recipientExternalID string) (*domain.Item, error)
}

// MarketSvcFacade combines purchase and listing operations.
type MarketSvcFacade interface {
	PurchaseSvc
	ListingSvc
}

// BidSvcFacade defines the bid lifecycle.
type BidSvcFacade interface {
	PlaceBid(ctx context.Context, itemID, bidderID string, amount int64, expiryHours int) (*domain.Bid, error)
	AcceptBid(ctx context.Context, bidID, ownerID string) (*domain.Purchase, error)
	RejectBid(ctx context.Context, bidID, ownerID string) (*domain.Bid, error)
	CancelBid(ctx context.Context, bidID, bidderID string) (*domain.Bid, error)

	// ExpireBids marks active bids past their deadline as expired and returns how many moved.
	ExpireBids(ctx context.Context) (int, error)
}
