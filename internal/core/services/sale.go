package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	"github.com/SscSPs/collectibles_market/internal/platform/random"
	"github.com/SscSPs/collectibles_market/internal/utils/accounting"
	"github.com/google/uuid"
)

// saleSignals carries what the caller needs to notify parties once the unit of work commits.
type saleSignals struct {
	buyerExternalID  string
	sellerExternalID string
}

func ptr[T any](v T) *T {
	return &v
}

// saleParties are the accounts a sale moves money between. referrer is nil when the
// buyer has none or it no longer resolves.
type saleParties struct {
	buyer    *domain.Account
	seller   *domain.Account
	referrer *domain.Account
}

// lockParties locks the buyer, the seller (empty for primary sales) and the buyer's
// referrer in ascending account id order. Every unit of work that locks more than one
// account goes through here or sorts the same way.
func lockParties(ctx context.Context, tx portsrepo.Tx, buyerID, sellerID string) (saleParties, error) {
	// The referral link is fixed at account creation, so an unlocked read is enough to find it.
	buyer, err := tx.FindAccount(ctx, buyerID)
	if err != nil {
		return saleParties{}, err
	}
	ids := []string{buyerID}
	if sellerID != "" {
		ids = append(ids, sellerID)
	}
	if buyer.ReferredBy != nil {
		ids = append(ids, *buyer.ReferredBy)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	locked := make(map[string]*domain.Account, len(ids))
	for _, id := range ids {
		acc, err := tx.FindAccountForUpdate(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) && buyer.ReferredBy != nil && id == *buyer.ReferredBy {
			continue
		}
		if err != nil {
			return saleParties{}, err
		}
		locked[id] = acc
	}

	parties := saleParties{buyer: locked[buyerID]}
	if sellerID != "" {
		parties.seller = locked[sellerID]
	}
	if buyer.ReferredBy != nil {
		parties.referrer = locked[*buyer.ReferredBy]
	}
	return parties, nil
}

// payReferral credits the already locked referrer, if any. It returns the commission
// actually paid.
func (s *BaseService) payReferral(ctx context.Context, tx portsrepo.Tx, p saleParties, commission int64, itemID, orderID string, now time.Time) (int64, error) {
	referrer, buyer := p.referrer, p.buyer
	if referrer == nil || commission <= 0 {
		return 0, nil
	}
	if _, err := tx.AdjustBalance(ctx, referrer.AccountID, commission, now); err != nil {
		return 0, err
	}
	entry := domain.LedgerEntry{
		EntryID:        uuid.NewString(),
		AccountID:      referrer.AccountID,
		Type:           domain.EntryReferral,
		Amount:         commission,
		CounterpartyID: ptr(buyer.AccountID),
		ItemID:         ptr(itemID),
		OrderID:        ptr(orderID),
		Status:         domain.EntryCompleted,
		CreatedAt:      now,
		LastUpdatedAt:  now,
	}
	if err := tx.SaveLedgerEntry(ctx, entry); err != nil {
		return 0, err
	}
	return commission, nil
}

// pickMintNumber draws one unassigned mint number uniformly at random.
func (s *BaseService) pickMintNumber(ctx context.Context, tx portsrepo.Tx, series *domain.Series) (int, error) {
	taken, err := tx.ListMintNumbers(ctx, series.SeriesID)
	if err != nil {
		return 0, err
	}
	available := series.AvailableMintNumbers(taken)
	if len(available) == 0 {
		return 0, fmt.Errorf("%w: series %s is sold out", apperrors.ErrConflict, series.SeriesID)
	}
	return random.Pick(s.rng, available), nil
}

// mintItem creates the owned item for number and bumps the series counter.
// A concurrently taken number surfaces as ErrConflictDetected from the store.
func mintItem(ctx context.Context, tx portsrepo.Tx, series *domain.Series, ownerID string, number int, now time.Time) (domain.Item, error) {
	item := domain.Item{
		ItemID:      uuid.NewString(),
		SeriesID:    series.SeriesID,
		MintNumber:  number,
		OwnerID:     ptr(ownerID),
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if err := tx.SaveItem(ctx, item); err != nil {
		return domain.Item{}, err
	}
	if err := tx.IncrementMinted(ctx, series.SeriesID, 1, now); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// primarySale mints number of series to buyer and settles the payment.
// Preconditions on the series (active, not sold out) are checked by the caller.
func (s *BaseService) primarySale(ctx context.Context, tx portsrepo.Tx, series *domain.Series, parties saleParties, number int, now time.Time) (*domain.Purchase, saleSignals, error) {
	buyer := parties.buyer
	if !buyer.CanAfford(series.Price) {
		return nil, saleSignals{}, fmt.Errorf("%w: price %d, balance %d", apperrors.ErrInsufficientFunds, series.Price, buyer.Balance)
	}
	settlement, err := accounting.SettleSale(series.Price, series.RoyaltyPercent, s.referralPercent, false, buyer.ReferredBy != nil)
	if err != nil {
		return nil, saleSignals{}, err
	}

	buyerBalance, err := tx.AdjustBalance(ctx, buyer.AccountID, -series.Price, now)
	if err != nil {
		return nil, saleSignals{}, err
	}
	item, err := mintItem(ctx, tx, series, buyer.AccountID, number, now)
	if err != nil {
		return nil, saleSignals{}, err
	}

	order := domain.Order{
		OrderID:   uuid.NewString(),
		ItemID:    item.ItemID,
		SeriesID:  series.SeriesID,
		BuyerID:   buyer.AccountID,
		Price:     series.Price,
		Type:      domain.OrderPrimary,
		CreatedAt: now,
	}
	order.Commission, err = s.payReferral(ctx, tx, parties, settlement.Commission, item.ItemID, order.OrderID, now)
	if err != nil {
		return nil, saleSignals{}, err
	}
	if err := tx.SaveOrder(ctx, order); err != nil {
		return nil, saleSignals{}, err
	}
	entry := domain.LedgerEntry{
		EntryID:       uuid.NewString(),
		AccountID:     buyer.AccountID,
		Type:          domain.EntryMint,
		Amount:        -series.Price,
		ItemID:        ptr(item.ItemID),
		OrderID:       ptr(order.OrderID),
		Status:        domain.EntryCompleted,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	if err := tx.SaveLedgerEntry(ctx, entry); err != nil {
		return nil, saleSignals{}, err
	}

	return &domain.Purchase{Item: item, Order: order, BuyerBalance: buyerBalance}, saleSignals{buyerExternalID: buyer.ExternalID}, nil
}

// checkResale verifies item can be sold on to buyerID.
func checkResale(item *domain.Item, buyerID string) error {
	if item.OwnerID == nil {
		return fmt.Errorf("%w: item %s has no owner", apperrors.ErrInvalidState, item.ItemID)
	}
	if item.IsOwnedBy(buyerID) {
		return fmt.Errorf("%w: buyer already owns item %s", apperrors.ErrInvalidState, item.ItemID)
	}
	return nil
}

// secondarySale moves the locked item from parties.seller to parties.buyer at price.
// Listing state is not checked here so bid acceptance can reuse it. The sibling bid
// sweep runs last, after the item and account locks are held.
func (s *BaseService) secondarySale(ctx context.Context, tx portsrepo.Tx, item *domain.Item, parties saleParties, price int64, now time.Time) (*domain.Purchase, saleSignals, error) {
	buyer, seller := parties.buyer, parties.seller
	if err := checkResale(item, buyer.AccountID); err != nil {
		return nil, saleSignals{}, err
	}
	if !buyer.CanAfford(price) {
		return nil, saleSignals{}, fmt.Errorf("%w: price %d, balance %d", apperrors.ErrInsufficientFunds, price, buyer.Balance)
	}
	series, err := tx.FindSeries(ctx, item.SeriesID)
	if err != nil {
		return nil, saleSignals{}, err
	}
	settlement, err := accounting.SettleSale(price, series.RoyaltyPercent, s.referralPercent, true, buyer.ReferredBy != nil)
	if err != nil {
		return nil, saleSignals{}, err
	}

	buyerBalance, err := tx.AdjustBalance(ctx, buyer.AccountID, -price, now)
	if err != nil {
		return nil, saleSignals{}, err
	}
	sellerBalance, err := tx.AdjustBalance(ctx, seller.AccountID, settlement.SellerCredit, now)
	if err != nil {
		return nil, saleSignals{}, err
	}

	item.TransferTo(buyer.AccountID)
	item.LastUpdatedAt = now
	if err := tx.UpdateItem(ctx, *item); err != nil {
		return nil, saleSignals{}, err
	}
	if _, err := tx.RejectActiveBids(ctx, item.ItemID, "", now); err != nil {
		return nil, saleSignals{}, err
	}

	order := domain.Order{
		OrderID:   uuid.NewString(),
		ItemID:    item.ItemID,
		SeriesID:  item.SeriesID,
		BuyerID:   buyer.AccountID,
		SellerID:  ptr(seller.AccountID),
		Price:     price,
		Royalty:   settlement.Royalty,
		Type:      domain.OrderSecondary,
		CreatedAt: now,
	}
	order.Commission, err = s.payReferral(ctx, tx, parties, settlement.Commission, item.ItemID, order.OrderID, now)
	if err != nil {
		return nil, saleSignals{}, err
	}
	if err := tx.SaveOrder(ctx, order); err != nil {
		return nil, saleSignals{}, err
	}

	entries := []domain.LedgerEntry{
		{
			EntryID:        uuid.NewString(),
			AccountID:      buyer.AccountID,
			Type:           domain.EntryBuy,
			Amount:         -price,
			CounterpartyID: ptr(seller.AccountID),
			ItemID:         ptr(item.ItemID),
			OrderID:        ptr(order.OrderID),
			Status:         domain.EntryCompleted,
			CreatedAt:      now,
			LastUpdatedAt:  now,
		},
		{
			EntryID:        uuid.NewString(),
			AccountID:      seller.AccountID,
			Type:           domain.EntrySell,
			Amount:         settlement.SellerCredit,
			CounterpartyID: ptr(buyer.AccountID),
			ItemID:         ptr(item.ItemID),
			OrderID:        ptr(order.OrderID),
			Status:         domain.EntryCompleted,
			CreatedAt:      now,
			LastUpdatedAt:  now,
		},
	}
	for _, entry := range entries {
		if err := tx.SaveLedgerEntry(ctx, entry); err != nil {
			return nil, saleSignals{}, err
		}
	}

	return &domain.Purchase{
			Item:          *item,
			Order:         order,
			BuyerBalance:  buyerBalance,
			SellerBalance: ptr(sellerBalance),
		}, saleSignals{
			buyerExternalID:  buyer.ExternalID,
			sellerExternalID: seller.ExternalID,
		}, nil
}

// announceSale fires the post-commit signals of a completed purchase.
func (s *BaseService) announceSale(ctx context.Context, p *domain.Purchase, sig saleSignals) {
	payload := map[string]any{
		"itemID":     p.Item.ItemID,
		"seriesID":   p.Item.SeriesID,
		"mintNumber": p.Item.MintNumber,
		"price":      p.Order.Price,
		"type":       string(p.Order.Type),
	}
	if sig.sellerExternalID != "" {
		s.notify(ctx, sig.sellerExternalID, external.KindItemSold, payload)
		s.emit(ctx, external.EventItemSold, payload)
	}
	s.emit(ctx, external.EventActivityNew, payload)
}
