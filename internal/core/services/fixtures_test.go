package services_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	"github.com/SscSPs/collectibles_market/internal/core/services"
	"github.com/SscSPs/collectibles_market/internal/platform/random"
	"github.com/SscSPs/collectibles_market/internal/repositories/memory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock Notifier ---
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, accountExternalID string, kind string, payload map[string]any) error {
	args := m.Called(ctx, accountExternalID, kind, payload)
	return args.Error(0)
}

// --- Mock Broadcaster ---
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Emit(ctx context.Context, event string, payload map[string]any) error {
	args := m.Called(ctx, event, payload)
	return args.Error(0)
}

// lockRecorder runs units of work on the memory store and records every row lock they
// take, in order, as "kind:id".
type lockRecorder struct {
	*memory.Store
	mu    sync.Mutex
	locks []string
}

func (r *lockRecorder) RunInTx(ctx context.Context, fn portsrepo.UnitOfWork) error {
	return r.Store.RunInTx(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		return fn(ctx, &recordingTx{Tx: tx, rec: r})
	})
}

func (r *lockRecorder) record(kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks = append(r.locks, kind+":"+id)
}

// take returns the locks recorded so far and clears them.
func (r *lockRecorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.locks
	r.locks = nil
	return out
}

// only keeps the entries of locks whose kind is one of kinds.
func only(locks []string, kinds ...string) []string {
	var out []string
	for _, l := range locks {
		for _, k := range kinds {
			if strings.HasPrefix(l, k+":") {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

type recordingTx struct {
	portsrepo.Tx
	rec *lockRecorder
}

func (t *recordingTx) FindAccountForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	t.rec.record("account", accountID)
	return t.Tx.FindAccountForUpdate(ctx, accountID)
}

func (t *recordingTx) FindAccountByDepositMemo(ctx context.Context, memo string) (*domain.Account, error) {
	t.rec.record("memo", memo)
	return t.Tx.FindAccountByDepositMemo(ctx, memo)
}

func (t *recordingTx) AdjustBalance(ctx context.Context, accountID string, delta int64, now time.Time) (int64, error) {
	t.rec.record("balance", accountID)
	return t.Tx.AdjustBalance(ctx, accountID, delta, now)
}

func (t *recordingTx) FindItemForUpdate(ctx context.Context, itemID string) (*domain.Item, error) {
	t.rec.record("item", itemID)
	return t.Tx.FindItemForUpdate(ctx, itemID)
}

func (t *recordingTx) FindBidForUpdate(ctx context.Context, bidID string) (*domain.Bid, error) {
	t.rec.record("bid", bidID)
	return t.Tx.FindBidForUpdate(ctx, bidID)
}

func (t *recordingTx) RejectActiveBids(ctx context.Context, itemID, exceptBidID string, now time.Time) (int, error) {
	t.rec.record("bids", itemID)
	return t.Tx.RejectActiveBids(ctx, itemID, exceptBidID, now)
}

func (t *recordingTx) IncrementMinted(ctx context.Context, seriesID string, delta int, now time.Time) error {
	t.rec.record("series", seriesID)
	return t.Tx.IncrementMinted(ctx, seriesID, delta, now)
}

// storeSuite seeds a memory store and builds services against it with a fixed clock.
type storeSuite struct {
	suite.Suite
	ctx         context.Context
	now         time.Time
	store       *memory.Store
	locks       *lockRecorder
	executor    *services.Executor
	notifier    *MockNotifier
	broadcaster *MockBroadcaster
}

func (s *storeSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.store = memory.NewStore()
	s.locks = &lockRecorder{Store: s.store}
	s.executor = services.NewExecutor(s.locks, 0)
	s.notifier = new(MockNotifier)
	s.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	s.broadcaster = new(MockBroadcaster)
	s.broadcaster.On("Emit", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

// options returns the shared service options; extra ones are applied last.
func (s *storeSuite) options(extra ...services.Option) []services.Option {
	opts := []services.Option{
		services.WithClock(func() time.Time { return s.now }),
		services.WithRandom(random.NewSequence(0)),
		services.WithNotifier(s.notifier),
		services.WithBroadcaster(s.broadcaster),
	}
	return append(opts, extra...)
}

func (s *storeSuite) seed(fn portsrepo.UnitOfWork) {
	s.Require().NoError(s.store.RunInTx(s.ctx, fn))
}

func (s *storeSuite) seedAccount(id string, balance int64, referredBy *string) {
	s.seed(func(ctx context.Context, tx portsrepo.Tx) error {
		return tx.SaveAccount(ctx, domain.Account{
			AccountID:   id,
			ExternalID:  "ext-" + id,
			Username:    id,
			Balance:     balance,
			ReferredBy:  referredBy,
			DepositMemo: "memo-" + id,
		})
	})
}

func (s *storeSuite) seedSeries(id string, supply int, price int64, royalty int) {
	s.seed(func(ctx context.Context, tx portsrepo.Tx) error {
		return tx.SaveSeries(ctx, domain.Series{
			SeriesID:       id,
			CollectionID:   "col-1",
			Name:           id,
			TotalSupply:    supply,
			Price:          price,
			RoyaltyPercent: royalty,
			IsActive:       true,
		})
	})
}

// seedItem mints number of seriesID to ownerID, listed at listPrice when non-nil.
func (s *storeSuite) seedItem(id, seriesID string, number int, ownerID string, listPrice *int64) {
	s.seed(func(ctx context.Context, tx portsrepo.Tx) error {
		item := domain.Item{
			ItemID:     id,
			SeriesID:   seriesID,
			MintNumber: number,
			OwnerID:    &ownerID,
			IsListed:   listPrice != nil,
			ListPrice:  listPrice,
		}
		if err := tx.SaveItem(ctx, item); err != nil {
			return err
		}
		return tx.IncrementMinted(ctx, seriesID, 1, s.now)
	})
}

func (s *storeSuite) balance(accountID string) int64 {
	acc, err := s.store.FindAccountByID(s.ctx, accountID)
	s.Require().NoError(err)
	return acc.Balance
}

func (s *storeSuite) entries(accountID string) []domain.LedgerEntry {
	entries, _, err := s.store.ListLedgerEntries(s.ctx, accountID, 100, nil)
	s.Require().NoError(err)
	return entries
}

func (s *storeSuite) entriesOfType(accountID string, typ domain.EntryType) []domain.LedgerEntry {
	var out []domain.LedgerEntry
	for _, e := range s.entries(accountID) {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (s *storeSuite) bid(bidID string) domain.Bid {
	var bid domain.Bid
	s.seed(func(ctx context.Context, tx portsrepo.Tx) error {
		b, err := tx.FindBidForUpdate(ctx, bidID)
		if err != nil {
			return err
		}
		bid = *b
		return nil
	})
	return bid
}

func (s *storeSuite) item(itemID string) domain.Item {
	item, err := s.store.GetItem(s.ctx, itemID)
	s.Require().NoError(err)
	return *item
}

func ptrTo[T any](v T) *T {
	return &v
}
