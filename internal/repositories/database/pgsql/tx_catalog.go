package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

const (
	seriesColumns = `series_id, collection_id, name, total_supply, minted_count, price, royalty_percent, is_active, created_at, last_updated_at`
	itemColumns   = `item_id, series_id, mint_number, owner_id, is_listed, list_price, created_at, last_updated_at`
)

func scanSeries(row pgx.Row) (*domain.Series, error) {
	var s domain.Series
	err := row.Scan(
		&s.SeriesID,
		&s.CollectionID,
		&s.Name,
		&s.TotalSupply,
		&s.MintedCount,
		&s.Price,
		&s.RoyaltyPercent,
		&s.IsActive,
		&s.CreatedAt,
		&s.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var i domain.Item
	err := row.Scan(
		&i.ItemID,
		&i.SeriesID,
		&i.MintNumber,
		&i.OwnerID,
		&i.IsListed,
		&i.ListPrice,
		&i.CreatedAt,
		&i.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// FindSeries does not lock: the minted counter is guarded by IncrementMinted.
func (t *pgxTx) FindSeries(ctx context.Context, seriesID string) (*domain.Series, error) {
	query := `SELECT ` + seriesColumns + ` FROM series WHERE series_id = $1`
	s, err := scanSeries(t.tx.QueryRow(ctx, query, seriesID))
	if err != nil {
		return nil, readErr(err, "series")
	}
	return s, nil
}

func (t *pgxTx) SaveSeries(ctx context.Context, series domain.Series) error {
	query := `
		INSERT INTO series (` + seriesColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := t.tx.Exec(ctx, query,
		series.SeriesID,
		series.CollectionID,
		series.Name,
		series.TotalSupply,
		series.MintedCount,
		series.Price,
		series.RoyaltyPercent,
		series.IsActive,
		series.CreatedAt,
		series.LastUpdatedAt,
	)
	if err != nil {
		return writeErr(err, apperrors.ErrDuplicate, "series "+series.SeriesID)
	}
	return nil
}

func (t *pgxTx) IncrementMinted(ctx context.Context, seriesID string, n int, now time.Time) error {
	query := `
		UPDATE series
		SET minted_count = minted_count + $2, last_updated_at = $3
		WHERE series_id = $1 AND minted_count + $2 <= total_supply;
	`
	tag, err := t.tx.Exec(ctx, query, seriesID, n, now)
	if err != nil {
		return writeErr(err, portsrepo.ErrConflictDetected, "series "+seriesID)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := t.FindSeries(ctx, seriesID); err != nil {
		return err
	}
	return fmt.Errorf("%w: series %s sold out", apperrors.ErrConflict, seriesID)
}

func (t *pgxTx) ListMintNumbers(ctx context.Context, seriesID string) ([]int, error) {
	rows, err := t.tx.Query(ctx, `SELECT mint_number FROM items WHERE series_id = $1 ORDER BY mint_number`, seriesID)
	if err != nil {
		return nil, readErr(err, "mint numbers")
	}
	numbers, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, readErr(err, "mint numbers")
	}
	return numbers, nil
}

// SaveItem relies on the (series_id, mint_number) unique key to detect a number
// taken by a concurrent mint.
func (t *pgxTx) SaveItem(ctx context.Context, item domain.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := t.tx.Exec(ctx, query,
		item.ItemID,
		item.SeriesID,
		item.MintNumber,
		item.OwnerID,
		item.IsListed,
		item.ListPrice,
		item.CreatedAt,
		item.LastUpdatedAt,
	)
	if err != nil {
		return writeErr(err, portsrepo.ErrConflictDetected, fmt.Sprintf("series %s mint number %d", item.SeriesID, item.MintNumber))
	}
	return nil
}

func (t *pgxTx) FindItemForUpdate(ctx context.Context, itemID string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE item_id = $1 FOR UPDATE`
	item, err := scanItem(t.tx.QueryRow(ctx, query, itemID))
	if err != nil {
		return nil, readErr(err, "item")
	}
	return item, nil
}

func (t *pgxTx) FindItemByMintNumber(ctx context.Context, seriesID string, mintNumber int) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE series_id = $1 AND mint_number = $2 FOR UPDATE`
	item, err := scanItem(t.tx.QueryRow(ctx, query, seriesID, mintNumber))
	if err != nil {
		return nil, readErr(err, "item")
	}
	return item, nil
}

func (t *pgxTx) UpdateItem(ctx context.Context, item domain.Item) error {
	query := `
		UPDATE items
		SET owner_id = $2, is_listed = $3, list_price = $4, last_updated_at = $5
		WHERE item_id = $1;
	`
	tag, err := t.tx.Exec(ctx, query, item.ItemID, item.OwnerID, item.IsListed, item.ListPrice, item.LastUpdatedAt)
	if err != nil {
		return writeErr(err, portsrepo.ErrConflictDetected, "item "+item.ItemID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
