package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// LedgerTxStore defines order and ledger entry operations available inside a transaction.
type LedgerTxStore interface {
	SaveOrder(ctx context.Context, order domain.Order) error

	// SaveLedgerEntry appends an entry. A duplicate external hash yields ErrConflictDetected.
	SaveLedgerEntry(ctx context.Context, entry domain.LedgerEntry) error

	// LedgerEntryExists reports whether an entry already carries externalHash.
	LedgerEntryExists(ctx context.Context, externalHash string) (bool, error)

	FindLedgerEntryForUpdate(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// UpdateLedgerEntryStatus settles a pending entry; completed entries are immutable.
	UpdateLedgerEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, externalHash *string, now time.Time) error

	// SaveUnmatchedDeposit records an unresolvable inbound payment once per hash.
	SaveUnmatchedDeposit(ctx context.Context, deposit domain.UnmatchedDeposit) (bool, error)
}
