// Package memory provides an in-process transactional ledger store. Transactions
// are serialized and applied by swapping a cloned state, so a failed unit of
// work leaves no trace. It backs local development and the service tests.
package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
)

type state struct {
	accounts   map[string]domain.Account
	byExternal map[string]string // external id -> account id
	byMemo     map[string]string // deposit memo -> account id

	series      map[string]domain.Series
	items       map[string]domain.Item
	mintNumbers map[string]map[int]string // series id -> mint number -> item id

	bids     map[string]domain.Bid
	presales map[string]domain.PreSale
	pledges  map[string]domain.PresalePledge

	orders     []domain.Order
	entries    []domain.LedgerEntry
	entryIndex map[string]int    // entry id -> position in entries
	hashes     map[string]string // external hash -> entry id
	unmatched  map[string]domain.UnmatchedDeposit
}

func newState() state {
	return state{
		accounts:    map[string]domain.Account{},
		byExternal:  map[string]string{},
		byMemo:      map[string]string{},
		series:      map[string]domain.Series{},
		items:       map[string]domain.Item{},
		mintNumbers: map[string]map[int]string{},
		bids:        map[string]domain.Bid{},
		presales:    map[string]domain.PreSale{},
		pledges:     map[string]domain.PresalePledge{},
		entryIndex:  map[string]int{},
		hashes:      map[string]string{},
		unmatched:   map[string]domain.UnmatchedDeposit{},
	}
}

// clone copies every table. Entity values are copied by value; pointer fields are
// never written through, only replaced, so sharing them is safe.
func (s state) clone() state {
	c := state{
		accounts:    maps.Clone(s.accounts),
		byExternal:  maps.Clone(s.byExternal),
		byMemo:      maps.Clone(s.byMemo),
		series:      maps.Clone(s.series),
		items:       maps.Clone(s.items),
		mintNumbers: make(map[string]map[int]string, len(s.mintNumbers)),
		bids:        maps.Clone(s.bids),
		presales:    maps.Clone(s.presales),
		pledges:     maps.Clone(s.pledges),
		orders:      slices.Clone(s.orders),
		entries:     slices.Clone(s.entries),
		entryIndex:  maps.Clone(s.entryIndex),
		hashes:      maps.Clone(s.hashes),
		unmatched:   maps.Clone(s.unmatched),
	}
	for seriesID, numbers := range s.mintNumbers {
		c.mintNumbers[seriesID] = maps.Clone(numbers)
	}
	return c
}

// Store is the in-memory implementation of portsrepo.Store.
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

var _ portsrepo.Store = (*Store)(nil)

// RunInTx runs fn against a private copy of the state and publishes it only if fn succeeds.
func (s *Store) RunInTx(ctx context.Context, fn portsrepo.UnitOfWork) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{state: s.state.clone()}
	if err := fn(ctx, t); err != nil {
		return err
	}
	s.state = t.state
	return nil
}

// IsConflict reports duplicate-key failures raised by this store.
func (s *Store) IsConflict(err error) bool {
	return errors.Is(err, portsrepo.ErrConflictDetected)
}

// view runs fn on the committed state under a read lock.
func (s *Store) view(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.state)
}
