package pgsql

import (
	"context"
	"errors"
	"log/slog"

	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	"github.com/SscSPs/collectibles_market/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements portsrepo.Store on a pgx pool.
type Store struct {
	BaseRepository
}

var _ portsrepo.Store = (*Store)(nil)

// NewStore creates a store backed by pool. The schema is owned by the migrations.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{BaseRepository: BaseRepository{Pool: pool}}
}

// RunInTx commits fn's writes if it returns nil and rolls everything back otherwise.
func (s *Store) RunInTx(ctx context.Context, fn portsrepo.UnitOfWork) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := s.Rollback(ctx, tx); rbErr != nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Rollback failed", slog.String("error", rbErr.Error()))
		}
	}()

	if err := fn(ctx, &pgxTx{tx: tx}); err != nil {
		return err
	}
	return s.Commit(ctx, tx)
}

// IsConflict reports unique violations, serialization failures and deadlocks.
func (s *Store) IsConflict(err error) bool {
	return errors.Is(err, portsrepo.ErrConflictDetected)
}

// pgxTx is the portsrepo.Tx handed to units of work.
type pgxTx struct {
	tx pgx.Tx
}

var _ portsrepo.Tx = (*pgxTx)(nil)
