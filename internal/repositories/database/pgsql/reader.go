package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/utils/pagination"
)

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1`
	acc, err := scanAccount(s.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, readErr(err, "account")
	}
	return acc, nil
}

func (s *Store) GetSeries(ctx context.Context, seriesID string) (*domain.Series, error) {
	query := `SELECT ` + seriesColumns + ` FROM series WHERE series_id = $1`
	series, err := scanSeries(s.Pool.QueryRow(ctx, query, seriesID))
	if err != nil {
		return nil, readErr(err, "series")
	}
	return series, nil
}

func (s *Store) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE item_id = $1`
	item, err := scanItem(s.Pool.QueryRow(ctx, query, itemID))
	if err != nil {
		return nil, readErr(err, "item")
	}
	return item, nil
}

func (s *Store) GetPresale(ctx context.Context, presaleID string) (*domain.PreSale, error) {
	query := `SELECT ` + presaleColumns + ` FROM presales WHERE presale_id = $1`
	p, err := scanPresale(s.Pool.QueryRow(ctx, query, presaleID))
	if err != nil {
		return nil, readErr(err, "presale")
	}
	return p, nil
}

// ListLedgerEntries pages by (created_at DESC, entry_id DESC) using a keyset token.
func (s *Store) ListLedgerEntries(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	var cursorAt *time.Time
	var cursorID *string
	if nextToken != nil && *nextToken != "" {
		at, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid pagination token", err)
		}
		cursorAt, cursorID = &at, &id
	}

	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE account_id = $1
			AND ($2::timestamptz IS NULL OR (created_at, entry_id) < ($2, $3))
		ORDER BY created_at DESC, entry_id DESC
		LIMIT $4;
	`
	rows, err := s.Pool.Query(ctx, query, accountID, cursorAt, cursorID, limit+1)
	if err != nil {
		return nil, nil, readErr(err, "ledger entries")
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0, limit+1)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, nil, readErr(err, "ledger entry row")
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, readErr(err, "ledger entries")
	}

	var next *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.EntryID)
		next = &token
	}
	return entries, next, nil
}
