package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// AccountTxStore defines account operations available inside a transaction.
type AccountTxStore interface {
	// FindAccountForUpdate retrieves an account and locks it until the transaction ends.
	FindAccountForUpdate(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccount reads an account without locking it.
	FindAccount(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByExternalID resolves the identity supplied by the auth collaborator.
	// The row is not locked.
	FindAccountByExternalID(ctx context.Context, externalID string) (*domain.Account, error)

	// FindAccountByDepositMemo resolves the memo attached to an external payment.
	FindAccountByDepositMemo(ctx context.Context, memo string) (*domain.Account, error)

	// SaveAccount persists a new account. A duplicate external ID or memo yields ErrConflictDetected.
	SaveAccount(ctx context.Context, account domain.Account) error

	// AdjustBalance applies delta to the balance and returns the new balance.
	// It fails with apperrors.ErrInsufficientFunds if the balance would go negative.
	AdjustBalance(ctx context.Context, accountID string, delta int64, now time.Time) (int64, error)
}
