package repositories

import (
	"context"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// PresaleTxStore defines presale and pledge operations available inside a transaction.
type PresaleTxStore interface {
	SavePresale(ctx context.Context, presale domain.PreSale) error
	FindPresaleForUpdate(ctx context.Context, presaleID string) (*domain.PreSale, error)
	UpdatePresale(ctx context.Context, presale domain.PreSale) error

	// SumPledged returns the tickets already locked by accountID in presaleID.
	SumPledged(ctx context.Context, presaleID, accountID string) (int, error)

	SavePledge(ctx context.Context, pledge domain.PresalePledge) error
	ListPendingPledges(ctx context.Context, presaleID string) ([]domain.PresalePledge, error)
	UpdatePledge(ctx context.Context, pledge domain.PresalePledge) error
}
