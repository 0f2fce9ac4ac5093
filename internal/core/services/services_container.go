package services

import (
	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/platform/config"
)

// Collaborators are the outbound adapters the services call besides the store.
// Any of them may be nil; the affected operations then report ErrExternalUnavailable
// or skip caching.
type Collaborators struct {
	Ledger     external.ExternalLedger
	Dispatcher external.PaymentDispatcher
	StatsCache portsrepo.StatsCache
}

// NewServiceContainer creates a new service container with properly initialized dependencies.
// opts apply to every service, so the clock, randomness and signal sinks are shared.
func NewServiceContainer(cfg *config.Config, store portsrepo.Store, collab Collaborators, opts ...Option) *portssvc.ServiceContainer {
	executor := NewExecutor(store, cfg.TxMaxAttempts)

	base := []Option{
		WithReferralPercent(cfg.ReferralPercent),
		WithAdminExternalIDs(cfg.AdminExternalIDs),
	}
	opts = append(base, opts...)

	return &portssvc.ServiceContainer{
		Account:    NewAccountService(executor, store, opts...),
		Catalog:    NewCatalogService(executor, store, opts...),
		Market:     NewMarketService(executor, opts...),
		Bid:        NewBidService(executor, opts...),
		Presale:    NewPresaleService(executor, opts...),
		Deposit:    NewDepositPoller(executor, collab.Ledger, cfg.DepositAddress, cfg.DepositPollLimit, opts...),
		Withdrawal: NewWithdrawalService(executor, collab.Dispatcher, opts...),
		Stats:      NewStatsService(store, collab.StatsCache, cfg.StatsCacheTTL, opts...),
	}
}
