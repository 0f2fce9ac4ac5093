package services

import (
	"context"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves an account by its internal identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListLedgerEntries pages an account's funds-movement history, newest first.
	ListLedgerEntries(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// EnsureAccount returns the account bound to identity, creating it on first authentication.
	EnsureAccount(ctx context.Context, identity domain.Identity) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
