package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/utils"
	"github.com/google/uuid"
)

const (
	// DefaultLedgerPageSize is used when the caller does not ask for a page size.
	DefaultLedgerPageSize = 20
	// MaxLedgerPageSize caps a single ledger page.
	MaxLedgerPageSize = 100

	depositMemoBytes = 8
)

type accountService struct {
	BaseService
	executor *Executor
	reader   portsrepo.Reader
}

// NewAccountService creates the account service.
func NewAccountService(executor *Executor, reader portsrepo.Reader, opts ...Option) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: newBaseService(opts),
		executor:    executor,
		reader:      reader,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, err := s.reader.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("account " + accountID)
		}
		s.LogError(ctx, err, "Failed to get account", slog.String("account_id", accountID))
		return nil, err
	}
	return acc, nil
}

func (s *accountService) ListLedgerEntries(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = DefaultLedgerPageSize
	}
	limit = min(limit, MaxLedgerPageSize)
	entries, next, err := s.reader.ListLedgerEntries(ctx, accountID, limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger entries", slog.String("account_id", accountID))
		return nil, nil, err
	}
	return entries, next, nil
}

// EnsureAccount returns the account for identity, creating it with a fresh deposit
// memo on first sight. Two first requests racing on the same identity collide on
// the unique external id; the retry then finds the winner's row.
func (s *accountService) EnsureAccount(ctx context.Context, identity domain.Identity) (*domain.Account, error) {
	if identity.ExternalID == "" {
		return nil, fmt.Errorf("%w: identity has no subject", apperrors.ErrValidation)
	}
	created := false
	acc, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (*domain.Account, error) {
		created = false
		existing, err := tx.FindAccountByExternalID(ctx, identity.ExternalID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}

		memo, err := utils.GenerateDepositMemo(depositMemoBytes)
		if err != nil {
			return nil, fmt.Errorf("generate deposit memo: %w", err)
		}
		now := s.Now()
		acc := domain.Account{
			AccountID:   uuid.NewString(),
			ExternalID:  identity.ExternalID,
			Username:    identity.Username,
			DepositMemo: memo,
			AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		}
		_, acc.IsAdmin = s.adminIDs[identity.ExternalID]

		if ref := identity.ReferrerExternalID; ref != "" && ref != identity.ExternalID {
			referrer, err := tx.FindAccountByExternalID(ctx, ref)
			switch {
			case err == nil:
				acc.ReferredBy = ptr(referrer.AccountID)
			case !errors.Is(err, apperrors.ErrNotFound):
				return nil, err
			}
		}

		if err := tx.SaveAccount(ctx, acc); err != nil {
			return nil, err
		}
		created = true
		return &acc, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to ensure account", slog.String("external_id", identity.ExternalID))
		return nil, err
	}
	if created {
		s.LogInfo(ctx, "Account created", slog.String("account_id", acc.AccountID), slog.Bool("referred", acc.ReferredBy != nil))
	}
	return acc, nil
}
