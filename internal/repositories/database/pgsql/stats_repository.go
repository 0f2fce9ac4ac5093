package pgsql

import (
	"context"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
)

// scopeFilter matches series by id, or by collection when no series id is given.
const scopeFilter = `(s.series_id = $1 OR ($1 = '' AND s.collection_id = $2))`

func (s *Store) FloorListing(ctx context.Context, scope portsrepo.StatsScope) (int64, bool, error) {
	query := `
		SELECT MIN(i.list_price)
		FROM items i
		JOIN series s ON s.series_id = i.series_id
		WHERE i.is_listed AND i.list_price IS NOT NULL AND ` + scopeFilter
	var floor *int64
	if err := s.Pool.QueryRow(ctx, query, scope.SeriesID, scope.CollectionID).Scan(&floor); err != nil {
		return 0, false, readErr(err, "floor listing")
	}
	if floor == nil {
		return 0, false, nil
	}
	return *floor, true, nil
}

func (s *Store) BasePrice(ctx context.Context, scope portsrepo.StatsScope) (int64, error) {
	query := `SELECT MIN(s.price) FROM series s WHERE ` + scopeFilter
	var base *int64
	if err := s.Pool.QueryRow(ctx, query, scope.SeriesID, scope.CollectionID).Scan(&base); err != nil {
		return 0, readErr(err, "base price")
	}
	if base == nil {
		return 0, apperrors.ErrNotFound
	}
	return *base, nil
}

func (s *Store) SalesVolume(ctx context.Context, scope portsrepo.StatsScope) (int64, int64, error) {
	query := `
		SELECT COALESCE(SUM(o.price), 0), COUNT(o.order_id)
		FROM orders o
		JOIN series s ON s.series_id = o.series_id
		WHERE ` + scopeFilter
	var volume, sales int64
	if err := s.Pool.QueryRow(ctx, query, scope.SeriesID, scope.CollectionID).Scan(&volume, &sales); err != nil {
		return 0, 0, readErr(err, "sales volume")
	}
	return volume, sales, nil
}

func (s *Store) PriceHistory(ctx context.Context, itemID string) ([]domain.PricePoint, error) {
	query := `
		SELECT order_id, price, order_type, created_at
		FROM orders
		WHERE item_id = $1
		ORDER BY created_at, order_id;
	`
	rows, err := s.Pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, readErr(err, "price history")
	}
	defer rows.Close()

	points := []domain.PricePoint{}
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.OrderID, &p.Price, &p.Type, &p.CreatedAt); err != nil {
			return nil, readErr(err, "price history row")
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, readErr(err, "price history")
	}
	return points, nil
}
