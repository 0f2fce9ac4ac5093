package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
)

func (t *tx) SavePresale(_ context.Context, presale domain.PreSale) error {
	if _, exists := t.state.presales[presale.PresaleID]; exists {
		return fmt.Errorf("%w: presale %s already exists", apperrors.ErrDuplicate, presale.PresaleID)
	}
	t.state.presales[presale.PresaleID] = presale
	return nil
}

func (t *tx) FindPresaleForUpdate(_ context.Context, presaleID string) (*domain.PreSale, error) {
	p, ok := t.state.presales[presaleID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (t *tx) UpdatePresale(_ context.Context, presale domain.PreSale) error {
	if _, ok := t.state.presales[presale.PresaleID]; !ok {
		return apperrors.ErrNotFound
	}
	t.state.presales[presale.PresaleID] = presale
	return nil
}

func (t *tx) SumPledged(_ context.Context, presaleID, accountID string) (int, error) {
	total := 0
	for _, p := range t.state.pledges {
		if p.PresaleID == presaleID && p.AccountID == accountID {
			total += p.AmountLocked
		}
	}
	return total, nil
}

func (t *tx) SavePledge(_ context.Context, pledge domain.PresalePledge) error {
	if _, exists := t.state.pledges[pledge.PledgeID]; exists {
		return fmt.Errorf("%w: pledge %s", portsrepo.ErrConflictDetected, pledge.PledgeID)
	}
	t.state.pledges[pledge.PledgeID] = pledge
	return nil
}

// ListPendingPledges returns pending pledges in creation order, ties broken by id,
// so a seeded draw is reproducible.
func (t *tx) ListPendingPledges(_ context.Context, presaleID string) ([]domain.PresalePledge, error) {
	var pending []domain.PresalePledge
	for _, p := range t.state.pledges {
		if p.PresaleID == presaleID && p.Status == domain.PledgePending {
			pending = append(pending, p)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].PledgeID < pending[j].PledgeID
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending, nil
}

func (t *tx) UpdatePledge(_ context.Context, pledge domain.PresalePledge) error {
	if _, ok := t.state.pledges[pledge.PledgeID]; !ok {
		return apperrors.ErrNotFound
	}
	t.state.pledges[pledge.PledgeID] = pledge
	return nil
}

func (t *tx) SaveOrder(_ context.Context, order domain.Order) error {
	t.state.orders = append(t.state.orders, order)
	return nil
}

func (t *tx) SaveLedgerEntry(_ context.Context, entry domain.LedgerEntry) error {
	if _, exists := t.state.entryIndex[entry.EntryID]; exists {
		return fmt.Errorf("%w: ledger entry %s", portsrepo.ErrConflictDetected, entry.EntryID)
	}
	if entry.ExternalHash != nil {
		if _, exists := t.state.hashes[*entry.ExternalHash]; exists {
			return fmt.Errorf("%w: external hash %s", portsrepo.ErrConflictDetected, *entry.ExternalHash)
		}
		t.state.hashes[*entry.ExternalHash] = entry.EntryID
	}
	t.state.entryIndex[entry.EntryID] = len(t.state.entries)
	t.state.entries = append(t.state.entries, entry)
	return nil
}

func (t *tx) LedgerEntryExists(_ context.Context, externalHash string) (bool, error) {
	_, exists := t.state.hashes[externalHash]
	return exists, nil
}

func (t *tx) FindLedgerEntryForUpdate(_ context.Context, entryID string) (*domain.LedgerEntry, error) {
	idx, ok := t.state.entryIndex[entryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	entry := t.state.entries[idx]
	return &entry, nil
}

func (t *tx) UpdateLedgerEntryStatus(_ context.Context, entryID string, status domain.EntryStatus, externalHash *string, now time.Time) error {
	idx, ok := t.state.entryIndex[entryID]
	if !ok {
		return apperrors.ErrNotFound
	}
	entry := t.state.entries[idx]
	if entry.Status != domain.EntryPending {
		return fmt.Errorf("%w: ledger entry %s is %s", apperrors.ErrInvalidState, entryID, entry.Status)
	}
	if externalHash != nil {
		if _, exists := t.state.hashes[*externalHash]; exists {
			return fmt.Errorf("%w: external hash %s", portsrepo.ErrConflictDetected, *externalHash)
		}
		t.state.hashes[*externalHash] = entryID
		entry.ExternalHash = externalHash
	}
	entry.Status = status
	entry.LastUpdatedAt = now
	t.state.entries[idx] = entry
	return nil
}

func (t *tx) SaveUnmatchedDeposit(_ context.Context, deposit domain.UnmatchedDeposit) (bool, error) {
	if _, exists := t.state.unmatched[deposit.ExternalHash]; exists {
		return false, nil
	}
	t.state.unmatched[deposit.ExternalHash] = deposit
	return true, nil
}
