package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
)

// tx mutates a private state copy. Row locks are implicit: transactions are serialized.
type tx struct {
	state state
}

var _ portsrepo.Tx = (*tx)(nil)

func (t *tx) FindAccountForUpdate(_ context.Context, accountID string) (*domain.Account, error) {
	acc, ok := t.state.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

// FindAccount is FindAccountForUpdate: the whole unit of work already holds the store lock.
func (t *tx) FindAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return t.FindAccountForUpdate(ctx, accountID)
}

func (t *tx) FindAccountByExternalID(ctx context.Context, externalID string) (*domain.Account, error) {
	id, ok := t.state.byExternal[externalID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return t.FindAccountForUpdate(ctx, id)
}

func (t *tx) FindAccountByDepositMemo(ctx context.Context, memo string) (*domain.Account, error) {
	id, ok := t.state.byMemo[memo]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return t.FindAccountForUpdate(ctx, id)
}

func (t *tx) SaveAccount(_ context.Context, account domain.Account) error {
	if _, exists := t.state.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s", portsrepo.ErrConflictDetected, account.AccountID)
	}
	if _, exists := t.state.byExternal[account.ExternalID]; exists {
		return fmt.Errorf("%w: external id %s", portsrepo.ErrConflictDetected, account.ExternalID)
	}
	if _, exists := t.state.byMemo[account.DepositMemo]; exists {
		return fmt.Errorf("%w: deposit memo", portsrepo.ErrConflictDetected)
	}
	t.state.accounts[account.AccountID] = account
	t.state.byExternal[account.ExternalID] = account.AccountID
	t.state.byMemo[account.DepositMemo] = account.AccountID
	return nil
}

func (t *tx) AdjustBalance(_ context.Context, accountID string, delta int64, now time.Time) (int64, error) {
	acc, ok := t.state.accounts[accountID]
	if !ok {
		return 0, apperrors.ErrNotFound
	}
	if acc.Balance+delta < 0 {
		return acc.Balance, fmt.Errorf("%w: account %s", apperrors.ErrInsufficientFunds, accountID)
	}
	acc.Balance += delta
	acc.LastUpdatedAt = now
	t.state.accounts[accountID] = acc
	return acc.Balance, nil
}

func (t *tx) FindSeries(_ context.Context, seriesID string) (*domain.Series, error) {
	s, ok := t.state.series[seriesID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &s, nil
}

func (t *tx) SaveSeries(_ context.Context, series domain.Series) error {
	if _, exists := t.state.series[series.SeriesID]; exists {
		return fmt.Errorf("%w: series %s already exists", apperrors.ErrDuplicate, series.SeriesID)
	}
	t.state.series[series.SeriesID] = series
	return nil
}

func (t *tx) IncrementMinted(_ context.Context, seriesID string, n int, now time.Time) error {
	s, ok := t.state.series[seriesID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if s.MintedCount+n > s.TotalSupply {
		return fmt.Errorf("%w: series %s sold out", apperrors.ErrConflict, seriesID)
	}
	s.MintedCount += n
	s.LastUpdatedAt = now
	t.state.series[seriesID] = s
	return nil
}

func (t *tx) ListMintNumbers(_ context.Context, seriesID string) ([]int, error) {
	numbers := make([]int, 0, len(t.state.mintNumbers[seriesID]))
	for n := range t.state.mintNumbers[seriesID] {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)
	return numbers, nil
}

func (t *tx) SaveItem(_ context.Context, item domain.Item) error {
	numbers := t.state.mintNumbers[item.SeriesID]
	if numbers == nil {
		numbers = map[int]string{}
		t.state.mintNumbers[item.SeriesID] = numbers
	}
	if _, taken := numbers[item.MintNumber]; taken {
		return fmt.Errorf("%w: series %s mint number %d", portsrepo.ErrConflictDetected, item.SeriesID, item.MintNumber)
	}
	if _, exists := t.state.items[item.ItemID]; exists {
		return fmt.Errorf("%w: item %s", portsrepo.ErrConflictDetected, item.ItemID)
	}
	numbers[item.MintNumber] = item.ItemID
	t.state.items[item.ItemID] = item
	return nil
}

func (t *tx) FindItemForUpdate(_ context.Context, itemID string) (*domain.Item, error) {
	item, ok := t.state.items[itemID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &item, nil
}

func (t *tx) FindItemByMintNumber(ctx context.Context, seriesID string, mintNumber int) (*domain.Item, error) {
	itemID, ok := t.state.mintNumbers[seriesID][mintNumber]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return t.FindItemForUpdate(ctx, itemID)
}

func (t *tx) UpdateItem(_ context.Context, item domain.Item) error {
	current, ok := t.state.items[item.ItemID]
	if !ok {
		return apperrors.ErrNotFound
	}
	current.OwnerID = item.OwnerID
	current.IsListed = item.IsListed
	current.ListPrice = item.ListPrice
	current.LastUpdatedAt = item.LastUpdatedAt
	t.state.items[item.ItemID] = current
	return nil
}

func (t *tx) SaveBid(_ context.Context, bid domain.Bid) error {
	if _, exists := t.state.bids[bid.BidID]; exists {
		return fmt.Errorf("%w: bid %s", portsrepo.ErrConflictDetected, bid.BidID)
	}
	t.state.bids[bid.BidID] = bid
	return nil
}

func (t *tx) FindBid(ctx context.Context, bidID string) (*domain.Bid, error) {
	return t.FindBidForUpdate(ctx, bidID)
}

func (t *tx) FindBidForUpdate(_ context.Context, bidID string) (*domain.Bid, error) {
	bid, ok := t.state.bids[bidID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &bid, nil
}

func (t *tx) UpdateBidStatus(_ context.Context, bidID string, status domain.BidStatus, now time.Time) error {
	bid, ok := t.state.bids[bidID]
	if !ok {
		return apperrors.ErrNotFound
	}
	bid.Status = status
	bid.LastUpdatedAt = now
	t.state.bids[bidID] = bid
	return nil
}

func (t *tx) RejectActiveBids(_ context.Context, itemID string, exceptBidID string, now time.Time) (int, error) {
	rejected := 0
	for id, bid := range t.state.bids {
		if bid.ItemID != itemID || bid.Status != domain.BidActive || id == exceptBidID {
			continue
		}
		bid.Status = domain.BidRejected
		bid.LastUpdatedAt = now
		t.state.bids[id] = bid
		rejected++
	}
	return rejected, nil
}

func (t *tx) ExpireBids(_ context.Context, now time.Time) (int, error) {
	expired := 0
	for id, bid := range t.state.bids {
		if bid.Status != domain.BidActive || !bid.IsExpired(now) {
			continue
		}
		bid.Status = domain.BidExpired
		bid.LastUpdatedAt = now
		t.state.bids[id] = bid
		expired++
	}
	return expired, nil
}
