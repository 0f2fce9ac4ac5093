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

// marketService implements primary and secondary purchases, listings and gifts.
type marketService struct {
	BaseService
	executor *Executor
}

// NewMarketService creates a market service running its operations through executor.
func NewMarketService(executor *Executor, opts ...Option) portssvc.MarketSvcFacade {
	return &marketService{
		BaseService: newBaseService(opts),
		executor:    executor,
	}
}

var _ portssvc.MarketSvcFacade = (*marketService)(nil)

type purchaseOutcome struct {
	purchase *domain.Purchase
	signals  saleSignals
}

// checkMintable verifies the series accepts primary purchases.
func checkMintable(series *domain.Series) error {
	if !series.IsActive {
		return fmt.Errorf("%w: series %s is not active", apperrors.ErrInvalidState, series.SeriesID)
	}
	if series.SoldOut() {
		return fmt.Errorf("%w: series %s is sold out", apperrors.ErrConflict, series.SeriesID)
	}
	return nil
}

func (s *marketService) Mint(ctx context.Context, seriesID, buyerID string) (*domain.Purchase, error) {
	out, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (purchaseOutcome, error) {
		now := s.Now()
		series, err := tx.FindSeries(ctx, seriesID)
		if err != nil {
			return purchaseOutcome{}, err
		}
		if err := checkMintable(series); err != nil {
			return purchaseOutcome{}, err
		}
		parties, err := lockParties(ctx, tx, buyerID, "")
		if err != nil {
			return purchaseOutcome{}, err
		}
		if !parties.buyer.CanAfford(series.Price) {
			return purchaseOutcome{}, fmt.Errorf("%w: price %d, balance %d", apperrors.ErrInsufficientFunds, series.Price, parties.buyer.Balance)
		}
		number, err := s.pickMintNumber(ctx, tx, series)
		if err != nil {
			return purchaseOutcome{}, err
		}
		purchase, sig, err := s.primarySale(ctx, tx, series, parties, number, now)
		if err != nil {
			return purchaseOutcome{}, err
		}
		return purchaseOutcome{purchase: purchase, signals: sig}, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Mint failed", slog.String("series_id", seriesID))
		return nil, err
	}

	s.LogInfo(ctx, "Item minted",
		slog.String("series_id", seriesID),
		slog.String("item_id", out.purchase.Item.ItemID),
		slog.Int("mint_number", out.purchase.Item.MintNumber))
	s.announceSale(ctx, out.purchase, out.signals)
	return out.purchase, nil
}

func (s *marketService) Buy(ctx context.Context, itemID, buyerID string) (*domain.Purchase, error) {
	out, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (purchaseOutcome, error) {
		item, err := tx.FindItemForUpdate(ctx, itemID)
		if err != nil {
			return purchaseOutcome{}, err
		}
		return s.buyListed(ctx, tx, item, buyerID)
	})
	if err != nil {
		s.LogError(ctx, err, "Buy failed", slog.String("item_id", itemID))
		return nil, err
	}

	s.LogInfo(ctx, "Item sold", slog.String("item_id", itemID), slog.Int64("price", out.purchase.Order.Price))
	s.announceSale(ctx, out.purchase, out.signals)
	return out.purchase, nil
}

func (s *marketService) buyListed(ctx context.Context, tx portsrepo.Tx, item *domain.Item, buyerID string) (purchaseOutcome, error) {
	if !item.IsListed || item.ListPrice == nil {
		return purchaseOutcome{}, fmt.Errorf("%w: item %s is not listed", apperrors.ErrInvalidState, item.ItemID)
	}
	if err := checkResale(item, buyerID); err != nil {
		return purchaseOutcome{}, err
	}
	parties, err := lockParties(ctx, tx, buyerID, *item.OwnerID)
	if err != nil {
		return purchaseOutcome{}, err
	}
	purchase, sig, err := s.secondarySale(ctx, tx, item, parties, *item.ListPrice, s.Now())
	if err != nil {
		return purchaseOutcome{}, err
	}
	return purchaseOutcome{purchase: purchase, signals: sig}, nil
}

// BuyByNumber mints mintNumber when it is unassigned, buys it when it is listed,
// and fails with ErrInvalidState when it is owned but not for sale.
func (s *marketService) BuyByNumber(ctx context.Context, seriesID string, mintNumber int, buyerID string) (*domain.Purchase, error) {
	out, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (purchaseOutcome, error) {
		series, err := tx.FindSeries(ctx, seriesID)
		if err != nil {
			return purchaseOutcome{}, err
		}
		if mintNumber < 1 || mintNumber > series.TotalSupply {
			return purchaseOutcome{}, fmt.Errorf("%w: mint number %d outside [1, %d]", apperrors.ErrValidation, mintNumber, series.TotalSupply)
		}

		item, err := tx.FindItemByMintNumber(ctx, seriesID, mintNumber)
		switch {
		case err == nil:
			return s.buyListed(ctx, tx, item, buyerID)
		case !errors.Is(err, apperrors.ErrNotFound):
			return purchaseOutcome{}, err
		}

		if err := checkMintable(series); err != nil {
			return purchaseOutcome{}, err
		}
		parties, err := lockParties(ctx, tx, buyerID, "")
		if err != nil {
			return purchaseOutcome{}, err
		}
		purchase, sig, err := s.primarySale(ctx, tx, series, parties, mintNumber, s.Now())
		if err != nil {
			return purchaseOutcome{}, err
		}
		return purchaseOutcome{purchase: purchase, signals: sig}, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Buy by number failed", slog.String("series_id", seriesID), slog.Int("mint_number", mintNumber))
		return nil, err
	}

	s.announceSale(ctx, out.purchase, out.signals)
	return out.purchase, nil
}

// ownedItem loads itemID for update and checks ownerID holds it.
func ownedItem(ctx context.Context, tx portsrepo.Tx, itemID, ownerID string) (*domain.Item, error) {
	item, err := tx.FindItemForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(ownerID) {
		return nil, fmt.Errorf("%w: account %s does not own item %s", apperrors.ErrForbidden, ownerID, itemID)
	}
	return item, nil
}

func (s *marketService) List(ctx context.Context, itemID, ownerID string, price int64) (*domain.Item, error) {
	if price <= 0 {
		return nil, fmt.Errorf("%w: list price must be positive", apperrors.ErrValidation)
	}
	item, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (*domain.Item, error) {
		item, err := ownedItem(ctx, tx, itemID, ownerID)
		if err != nil {
			return nil, err
		}
		item.IsListed = true
		item.ListPrice = ptr(price)
		item.LastUpdatedAt = s.Now()
		if err := tx.UpdateItem(ctx, *item); err != nil {
			return nil, err
		}
		return item, nil
	})
	if err != nil {
		s.LogError(ctx, err, "List failed", slog.String("item_id", itemID))
		return nil, err
	}

	s.emit(ctx, external.EventActivityNew, map[string]any{"itemID": itemID, "listPrice": price, "type": "listing"})
	return item, nil
}

// Delist clears the listing. Delisting an unlisted item is a no-op.
func (s *marketService) Delist(ctx context.Context, itemID, ownerID string) (*domain.Item, error) {
	item, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (*domain.Item, error) {
		item, err := ownedItem(ctx, tx, itemID, ownerID)
		if err != nil {
			return nil, err
		}
		if !item.IsListed {
			return item, nil
		}
		item.IsListed = false
		item.ListPrice = nil
		item.LastUpdatedAt = s.Now()
		if err := tx.UpdateItem(ctx, *item); err != nil {
			return nil, err
		}
		return item, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Delist failed", slog.String("item_id", itemID))
		return nil, err
	}
	return item, nil
}

// Transfer gifts an unlisted item to the account holding recipientExternalID. Only
// the item and its bids are locked; the recipient's balance is untouched.
func (s *marketService) Transfer(ctx context.Context, itemID, ownerID, recipientExternalID string) (*domain.Item, error) {
	type transferOutcome struct {
		item                *domain.Item
		recipientExternalID string
	}
	out, err := RunWithResult(ctx, s.executor, func(ctx context.Context, tx portsrepo.Tx) (transferOutcome, error) {
		now := s.Now()
		item, err := ownedItem(ctx, tx, itemID, ownerID)
		if err != nil {
			return transferOutcome{}, err
		}
		if item.IsListed {
			return transferOutcome{}, fmt.Errorf("%w: delist item %s before transferring it", apperrors.ErrInvalidState, itemID)
		}
		recipient, err := tx.FindAccountByExternalID(ctx, recipientExternalID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return transferOutcome{}, apperrors.NewNotFoundError("recipient not found")
			}
			return transferOutcome{}, err
		}
		if recipient.AccountID == ownerID {
			return transferOutcome{}, fmt.Errorf("%w: cannot transfer to self", apperrors.ErrInvalidState)
		}

		item.TransferTo(recipient.AccountID)
		item.LastUpdatedAt = now
		if err := tx.UpdateItem(ctx, *item); err != nil {
			return transferOutcome{}, err
		}
		if _, err := tx.RejectActiveBids(ctx, itemID, "", now); err != nil {
			return transferOutcome{}, err
		}

		entries := []domain.LedgerEntry{
			{EntryID: uuid.NewString(), AccountID: ownerID, Type: domain.EntryTransferOut, CounterpartyID: ptr(recipient.AccountID)},
			{EntryID: uuid.NewString(), AccountID: recipient.AccountID, Type: domain.EntryTransferIn, CounterpartyID: ptr(ownerID)},
		}
		for _, entry := range entries {
			entry.ItemID = ptr(itemID)
			entry.Status = domain.EntryCompleted
			entry.CreatedAt = now
			entry.LastUpdatedAt = now
			if err := tx.SaveLedgerEntry(ctx, entry); err != nil {
				return transferOutcome{}, err
			}
		}
		return transferOutcome{item: item, recipientExternalID: recipient.ExternalID}, nil
	})
	if err != nil {
		s.LogError(ctx, err, "Transfer failed", slog.String("item_id", itemID))
		return nil, err
	}

	s.LogInfo(ctx, "Item transferred", slog.String("item_id", itemID))
	s.notify(ctx, out.recipientExternalID, external.KindItemReceived, map[string]any{"itemID": itemID})
	return out.item, nil
}
