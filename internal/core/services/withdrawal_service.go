package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/google/uuid"
)

// withdrawalService debits an account, dispatches the payment, then settles the
// pending entry. The dispatch happens between two units of work because it
// cannot be rolled back.
type withdrawalService struct {
	BaseService
	executor   *Executor
	dispatcher external.PaymentDispatcher
}

// NewWithdrawalService creates a withdrawal service. A nil dispatcher refuses every withdrawal.
func NewWithdrawalService(executor *Executor, dispatcher external.PaymentDispatcher, opts ...Option) portssvc.WithdrawalSvc {
	return &withdrawalService{
		BaseService: newBaseService(opts),
		executor:    executor,
		dispatcher:  dispatcher,
	}
}

var _ portssvc.WithdrawalSvc = (*withdrawalService)(nil)

type withdrawalHold struct {
	entry      domain.LedgerEntry
	externalID string
}

func (s *withdrawalService) Withdraw(ctx context.Context, accountID, destination string, amount int64) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", apperrors.ErrValidation)
	}
	if destination == "" {
		return nil, fmt.Errorf("%w: destination is required", apperrors.ErrValidation)
	}
	if s.dispatcher == nil {
		return nil, fmt.Errorf("%w: withdrawals are not configured", apperrors.ErrExternalUnavailable)
	}

	hold, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (withdrawalHold, error) {
		now := s.Now()
		acc, err := tx.FindAccountForUpdate(ctx, accountID)
		if err != nil {
			return withdrawalHold{}, err
		}
		if !acc.CanAfford(amount) {
			return withdrawalHold{}, fmt.Errorf("%w: amount %d, balance %d", apperrors.ErrInsufficientFunds, amount, acc.Balance)
		}
		if _, err := tx.AdjustBalance(ctx, accountID, -amount, now); err != nil {
			return withdrawalHold{}, err
		}
		entry := domain.LedgerEntry{
			EntryID:       uuid.NewString(),
			AccountID:     accountID,
			Type:          domain.EntryWithdrawal,
			Amount:        -amount,
			Destination:   ptr(destination),
			Status:        domain.EntryPending,
			CreatedAt:     now,
			LastUpdatedAt: now,
		}
		if err := tx.SaveLedgerEntry(ctx, entry); err != nil {
			return withdrawalHold{}, err
		}
		return withdrawalHold{entry: entry, externalID: acc.ExternalID}, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Withdrawal hold failed", slog.String("account_id", accountID))
		return nil, err
	}

	ref, dispatchErr := s.dispatcher.Dispatch(ctx, destination, amount)
	if dispatchErr != nil {
		s.LogError(ctx, dispatchErr, "Withdrawal dispatch failed", slog.String("entry_id", hold.entry.EntryID))
		// The refund must land even if the request was cancelled mid-dispatch.
		settleCtx := context.WithoutCancel(ctx)
		if err := s.refund(settleCtx, hold.entry); err != nil {
			s.LogError(ctx, err, "Withdrawal refund failed", slog.String("entry_id", hold.entry.EntryID))
			return nil, errors.Join(dispatchErr, err)
		}
		hold.entry.Status = domain.EntryFailed
		s.notify(ctx, hold.externalID, external.KindWithdrawalState, map[string]any{
			"entryID": hold.entry.EntryID,
			"status":  string(domain.EntryFailed),
			"amount":  amount,
		})
		return &hold.entry, fmt.Errorf("%w: dispatch withdrawal: %v", apperrors.ErrExternalUnavailable, dispatchErr)
	}

	err = s.executor.Run(context.WithoutCancel(ctx), func(ctx context.Context, tx portsrepo.Tx) error {
		return tx.UpdateLedgerEntryStatus(ctx, hold.entry.EntryID, domain.EntryCompleted, ptr(ref), s.Now())
	})
	if err != nil {
		// The payment left; the entry stays pending for manual settlement.
		s.LogError(ctx, err, "Withdrawal settlement failed", slog.String("entry_id", hold.entry.EntryID), slog.String("reference", ref))
		return &hold.entry, err
	}
	hold.entry.Status = domain.EntryCompleted
	hold.entry.ExternalHash = ptr(ref)

	s.LogInfo(ctx, "Withdrawal completed", slog.String("entry_id", hold.entry.EntryID), slog.Int64("amount", amount))
	s.notify(ctx, hold.externalID, external.KindWithdrawalState, map[string]any{
		"entryID":   hold.entry.EntryID,
		"status":    string(domain.EntryCompleted),
		"amount":    amount,
		"reference": ref,
	})
	return &hold.entry, nil
}

// refund marks the pending entry failed and returns the held amount.
func (s *withdrawalService) refund(ctx context.Context, pending domain.LedgerEntry) error {
	return s.executor.Run(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		now := s.Now()
		if err := tx.UpdateLedgerEntryStatus(ctx, pending.EntryID, domain.EntryFailed, nil, now); err != nil {
			return err
		}
		if _, err := tx.AdjustBalance(ctx, pending.AccountID, -pending.Amount, now); err != nil {
			return err
		}
		return tx.SaveLedgerEntry(ctx, domain.LedgerEntry{
			EntryID:       uuid.NewString(),
			AccountID:     pending.AccountID,
			Type:          domain.EntryWithdrawalRefund,
			Amount:        -pending.Amount,
			Destination:   pending.Destination,
			Status:        domain.EntryCompleted,
			CreatedAt:     now,
			LastUpdatedAt: now,
		})
	})
}
