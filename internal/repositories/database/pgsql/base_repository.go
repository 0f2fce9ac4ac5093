// Package pgsql is the PostgreSQL ledger store. Units of work run in one
// read-committed transaction; rows are locked with SELECT ... FOR UPDATE and
// the counters are guarded by conditional updates.
package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// BaseRepository provides transaction plumbing shared by the store.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		if isRetryable(err) {
			return fmt.Errorf("%w: %v", portsrepo.ErrConflictDetected, err)
		}
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isRetryable(err error) bool {
	switch pgCode(err) {
	case codeUniqueViolation, codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

// writeErr classifies a failed write. Unique violations become onDuplicate so the
// caller decides whether a collision is retryable.
func writeErr(err error, onDuplicate error, what string) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s", onDuplicate, what)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %s", portsrepo.ErrConflictDetected, what)
	}
	return apperrors.NewAppError(500, "failed to write "+what, err)
}

// readErr maps pgx.ErrNoRows to apperrors.ErrNotFound. A locking read aborted by a
// deadlock or serialization failure becomes ErrConflictDetected so the unit of work reruns.
func readErr(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %s", portsrepo.ErrConflictDetected, what)
	}
	return apperrors.NewAppError(500, "failed to read "+what, err)
}
