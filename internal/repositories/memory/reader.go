package memory

import (
	"context"
	"sort"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	"github.com/SscSPs/collectibles_market/internal/utils/pagination"
)

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	var out *domain.Account
	err := s.view(func(st *state) error {
		acc, ok := st.accounts[accountID]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &acc
		return nil
	})
	return out, err
}

func (s *Store) GetSeries(_ context.Context, seriesID string) (*domain.Series, error) {
	var out *domain.Series
	err := s.view(func(st *state) error {
		series, ok := st.series[seriesID]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &series
		return nil
	})
	return out, err
}

func (s *Store) GetItem(_ context.Context, itemID string) (*domain.Item, error) {
	var out *domain.Item
	err := s.view(func(st *state) error {
		item, ok := st.items[itemID]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &item
		return nil
	})
	return out, err
}

func (s *Store) GetPresale(_ context.Context, presaleID string) (*domain.PreSale, error) {
	var out *domain.PreSale
	err := s.view(func(st *state) error {
		p, ok := st.presales[presaleID]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

// ListLedgerEntries pages entries by (created_at DESC, entry_id DESC).
func (s *Store) ListLedgerEntries(_ context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []domain.LedgerEntry
	err := s.view(func(st *state) error {
		var owned []domain.LedgerEntry
		for _, e := range st.entries {
			if e.AccountID == accountID {
				owned = append(owned, e)
			}
		}
		sort.Slice(owned, func(i, j int) bool {
			if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
				return owned[i].EntryID > owned[j].EntryID
			}
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		})
		if nextToken != nil && *nextToken != "" {
			cursorAt, cursorID, err := pagination.DecodeToken(*nextToken)
			if err != nil {
				return apperrors.NewAppError(400, "invalid pagination token", err)
			}
			filtered := owned[:0]
			for _, e := range owned {
				if pagination.Before(e.CreatedAt, e.EntryID, cursorAt, cursorID) {
					filtered = append(filtered, e)
				}
			}
			owned = filtered
		}
		out = owned
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	var next *string
	if len(out) > limit {
		out = out[:limit]
		last := out[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.EntryID)
		next = &token
	}
	return out, next, nil
}

func (st *state) seriesInScope(scope portsrepo.StatsScope) map[string]domain.Series {
	inScope := map[string]domain.Series{}
	for id, series := range st.series {
		if (scope.SeriesID != "" && id == scope.SeriesID) ||
			(scope.SeriesID == "" && series.CollectionID == scope.CollectionID) {
			inScope[id] = series
		}
	}
	return inScope
}

func (s *Store) FloorListing(_ context.Context, scope portsrepo.StatsScope) (int64, bool, error) {
	var floor int64
	found := false
	err := s.view(func(st *state) error {
		inScope := st.seriesInScope(scope)
		for _, item := range st.items {
			if _, ok := inScope[item.SeriesID]; !ok || !item.IsListed || item.ListPrice == nil {
				continue
			}
			if !found || *item.ListPrice < floor {
				floor = *item.ListPrice
				found = true
			}
		}
		return nil
	})
	return floor, found, err
}

func (s *Store) BasePrice(_ context.Context, scope portsrepo.StatsScope) (int64, error) {
	var base int64
	err := s.view(func(st *state) error {
		inScope := st.seriesInScope(scope)
		if len(inScope) == 0 {
			return apperrors.ErrNotFound
		}
		first := true
		for _, series := range inScope {
			if first || series.Price < base {
				base = series.Price
				first = false
			}
		}
		return nil
	})
	return base, err
}

func (s *Store) SalesVolume(_ context.Context, scope portsrepo.StatsScope) (int64, int64, error) {
	var volume, sales int64
	err := s.view(func(st *state) error {
		inScope := st.seriesInScope(scope)
		for _, o := range st.orders {
			if _, ok := inScope[o.SeriesID]; ok {
				volume += o.Price
				sales++
			}
		}
		return nil
	})
	return volume, sales, err
}

func (s *Store) PriceHistory(_ context.Context, itemID string) ([]domain.PricePoint, error) {
	var points []domain.PricePoint
	err := s.view(func(st *state) error {
		for _, o := range st.orders {
			if o.ItemID == itemID {
				points = append(points, domain.PricePoint{OrderID: o.OrderID, Price: o.Price, Type: o.Type, CreatedAt: o.CreatedAt})
			}
		}
		return nil
	})
	sort.SliceStable(points, func(i, j int) bool { return points[i].CreatedAt.Before(points[j].CreatedAt) })
	return points, err
}
