package services

import (
	"context"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// PresaleSvcFacade defines raffle participation and resolution.
type PresaleSvcFacade interface {
	// Pledge locks ticketCount tickets for accountID.
	Pledge(ctx context.Context, presaleID, accountID string, ticketCount int) (*domain.PresalePledge, error)

	// Draw resolves every pending pledge of a presale. Admin only.
	Draw(ctx context.Context, presaleID, adminID string) (*domain.DrawResult, error)
}
