package repositories

import (
	"context"
	"errors"
)

// ErrConflictDetected is returned by store adapters when a write collides with a
// concurrent allocation (duplicate mint number, duplicate external hash, duplicate
// identity). The executor retries units of work that fail with it.
var ErrConflictDetected = errors.New("allocation conflict detected")

// UnitOfWork is business logic run inside one atomic store transaction.
// It must not perform non-transactional side effects: it may be re-executed.
type UnitOfWork func(ctx context.Context, tx Tx) error

// TransactionManager runs units of work atomically and classifies conflicts.
type TransactionManager interface {
	// RunInTx applies fn's writes all-or-nothing, isolated from concurrent units of work.
	RunInTx(ctx context.Context, fn UnitOfWork) error

	// IsConflict reports whether err is a retryable allocation conflict.
	IsConflict(err error) bool
}

// Tx is the transaction handle passed to units of work.
type Tx interface {
	AccountTxStore
	CatalogTxStore
	BidTxStore
	PresaleTxStore
	LedgerTxStore
}

// Store is the full ledger store: transactional writes plus committed reads.
type Store interface {
	TransactionManager
	Reader
}
