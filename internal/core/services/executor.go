package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	"github.com/SscSPs/collectibles_market/internal/middleware"
)

// DefaultMaxAttempts bounds how many times a conflicting unit of work is run.
const DefaultMaxAttempts = 3

// Executor runs units of work atomically and re-runs them on allocation conflicts.
// It is the only place concurrency conflicts are resolved.
type Executor struct {
	tm          portsrepo.TransactionManager
	maxAttempts int
}

// NewExecutor wraps tm. A non-positive maxAttempts selects DefaultMaxAttempts.
func NewExecutor(tm portsrepo.TransactionManager, maxAttempts int) *Executor {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Executor{tm: tm, maxAttempts: maxAttempts}
}

// Run applies fn all-or-nothing. Conflicts classified by the store are retried up
// to the attempt bound and then surface as apperrors.ErrConflict; any other error
// is returned as is, without retry.
func (e *Executor) Run(ctx context.Context, fn portsrepo.UnitOfWork) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	for attempt := 1; ; attempt++ {
		err := e.tm.RunInTx(ctx, fn)
		if err == nil {
			return nil
		}
		if !e.tm.IsConflict(err) {
			return err
		}
		if attempt >= e.maxAttempts {
			logger.Warn("Allocation conflict retries exhausted", slog.Int("attempts", attempt), slog.String("error", err.Error()))
			return fmt.Errorf("%w: gave up after %d attempts: %v", apperrors.ErrConflict, attempt, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.Debug("Retrying unit of work after allocation conflict", slog.Int("attempt", attempt), slog.String("error", err.Error()))
	}
}

// RunWithResult is Run for units of work that produce a value. The value of the
// last, committed attempt is returned.
func RunWithResult[T any](ctx context.Context, e *Executor, fn func(ctx context.Context, tx portsrepo.Tx) (T, error)) (T, error) {
	var result T
	err := e.Run(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		r, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
