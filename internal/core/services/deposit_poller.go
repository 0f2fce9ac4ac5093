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

// DefaultDepositPollLimit is how many recent inbound transfers one cycle inspects.
const DefaultDepositPollLimit = 50

type depositResult int

const (
	depositCredited depositResult = iota
	depositDuplicate
	depositUnmatched
)

type depositOutcome struct {
	result     depositResult
	externalID string
	accountID  string
	balance    int64
}

// depositPoller credits inbound payments on the platform wallet to the account
// whose memo they carry. The external hash makes every credit happen once.
type depositPoller struct {
	BaseService
	executor *Executor
	ledger   external.ExternalLedger
	address  string
	limit    int
}

// NewDepositPoller creates a poller watching address on ledger.
func NewDepositPoller(executor *Executor, ledger external.ExternalLedger, address string, limit int, opts ...Option) portssvc.DepositPollerSvc {
	if limit <= 0 {
		limit = DefaultDepositPollLimit
	}
	return &depositPoller{
		BaseService: newBaseService(opts),
		executor:    executor,
		ledger:      ledger,
		address:     address,
		limit:       limit,
	}
}

var _ portssvc.DepositPollerSvc = (*depositPoller)(nil)

// PollOnce runs one reconciliation cycle. Only a provider failure is returned;
// per-transfer failures are counted in the report and logged.
func (p *depositPoller) PollOnce(ctx context.Context) (domain.PollReport, error) {
	var report domain.PollReport
	if p.ledger == nil || p.address == "" {
		return report, fmt.Errorf("%w: deposit ledger not configured", apperrors.ErrExternalUnavailable)
	}

	transfers, err := p.ledger.ListRecentInbound(ctx, p.address, p.limit)
	if err != nil {
		wrapped := fmt.Errorf("%w: list inbound transfers: %v", apperrors.ErrExternalUnavailable, err)
		p.LogError(ctx, wrapped, "Deposit poll failed")
		return report, wrapped
	}
	report.Observed = len(transfers)

	for _, t := range transfers {
		if t.Memo == "" || t.Hash == "" || t.Amount <= 0 {
			report.Skipped++
			continue
		}
		out, err := p.reconcile(ctx, t)
		if err != nil {
			report.Failed++
			p.LogError(ctx, err, "Deposit reconciliation failed", slog.String("hash", t.Hash))
			continue
		}
		switch out.result {
		case depositDuplicate:
			report.Duplicates++
		case depositUnmatched:
			report.Unmatched++
			p.LogInfo(ctx, "Deposit memo matched no account", slog.String("hash", t.Hash), slog.String("memo", t.Memo))
		case depositCredited:
			report.Credited++
			p.LogInfo(ctx, "Deposit credited",
				slog.String("hash", t.Hash),
				slog.String("account_id", out.accountID),
				slog.Int64("amount", t.Amount))
			p.notify(ctx, out.externalID, external.KindDeposit, map[string]any{
				"amount":  t.Amount,
				"balance": out.balance,
				"hash":    t.Hash,
			})
			p.emit(ctx, external.EventBalanceDeposit, map[string]any{"accountID": out.accountID, "amount": t.Amount})
			p.emit(ctx, external.EventActivityNew, map[string]any{"type": string(domain.EntryDeposit), "accountID": out.accountID, "amount": t.Amount})
		}
	}

	if report.Credited > 0 || report.Failed > 0 {
		p.LogInfo(ctx, "Deposit poll finished",
			slog.Int("observed", report.Observed),
			slog.Int("credited", report.Credited),
			slog.Int("failed", report.Failed))
	}
	return report, nil
}

func (p *depositPoller) reconcile(ctx context.Context, t domain.InboundTransfer) (depositOutcome, error) {
	return RunWithResult(ctx, p.executor, func(ctx context.Context, tx portsrepo.Tx) (depositOutcome, error) {
		now := p.Now()
		seen, err := tx.LedgerEntryExists(ctx, t.Hash)
		if err != nil {
			return depositOutcome{}, err
		}
		if seen {
			return depositOutcome{result: depositDuplicate}, nil
		}

		acc, err := tx.FindAccountByDepositMemo(ctx, t.Memo)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return depositOutcome{}, err
			}
			recorded, err := tx.SaveUnmatchedDeposit(ctx, domain.UnmatchedDeposit{
				ExternalHash: t.Hash,
				Memo:         t.Memo,
				Amount:       t.Amount,
				Source:       t.Source,
				FirstSeenAt:  now,
			})
			if err != nil {
				return depositOutcome{}, err
			}
			if !recorded {
				return depositOutcome{result: depositDuplicate}, nil
			}
			return depositOutcome{result: depositUnmatched}, nil
		}

		balance, err := tx.AdjustBalance(ctx, acc.AccountID, t.Amount, now)
		if err != nil {
			return depositOutcome{}, err
		}
		entry := domain.LedgerEntry{
			EntryID:       uuid.NewString(),
			AccountID:     acc.AccountID,
			Type:          domain.EntryDeposit,
			Amount:        t.Amount,
			ExternalHash:  ptr(t.Hash),
			Status:        domain.EntryCompleted,
			CreatedAt:     now,
			LastUpdatedAt: now,
		}
		if err := tx.SaveLedgerEntry(ctx, entry); err != nil {
			return depositOutcome{}, err
		}
		return depositOutcome{
			result:     depositCredited,
			externalID: acc.ExternalID,
			accountID:  acc.AccountID,
			balance:    balance,
		}, nil
	})
}
