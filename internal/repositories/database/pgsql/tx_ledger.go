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

const entryColumns = `entry_id, account_id, entry_type, amount, counterparty_id, item_id, order_id, external_hash, destination, status, created_at, last_updated_at`

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := row.Scan(
		&e.EntryID,
		&e.AccountID,
		&e.Type,
		&e.Amount,
		&e.CounterpartyID,
		&e.ItemID,
		&e.OrderID,
		&e.ExternalHash,
		&e.Destination,
		&e.Status,
		&e.CreatedAt,
		&e.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (t *pgxTx) SaveOrder(ctx context.Context, order domain.Order) error {
	query := `
		INSERT INTO orders (order_id, item_id, series_id, buyer_id, seller_id, price, royalty, commission, order_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := t.tx.Exec(ctx, query,
		order.OrderID,
		order.ItemID,
		order.SeriesID,
		order.BuyerID,
		order.SellerID,
		order.Price,
		order.Royalty,
		order.Commission,
		order.Type,
		order.CreatedAt,
	)
	if err != nil {
		return writeErr(err, portsrepo.ErrConflictDetected, "order "+order.OrderID)
	}
	return nil
}

func (t *pgxTx) SaveLedgerEntry(ctx context.Context, entry domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := t.tx.Exec(ctx, query,
		entry.EntryID,
		entry.AccountID,
		entry.Type,
		entry.Amount,
		entry.CounterpartyID,
		entry.ItemID,
		entry.OrderID,
		entry.ExternalHash,
		entry.Destination,
		entry.Status,
		entry.CreatedAt,
		entry.LastUpdatedAt,
	)
	if err != nil {
		return writeErr(err, portsrepo.ErrConflictDetected, "ledger entry "+entry.EntryID)
	}
	return nil
}

func (t *pgxTx) LedgerEntryExists(ctx context.Context, externalHash string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE external_hash = $1)`, externalHash).Scan(&exists)
	if err != nil {
		return false, readErr(err, "ledger entry hash")
	}
	return exists, nil
}

func (t *pgxTx) FindLedgerEntryForUpdate(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE entry_id = $1 FOR UPDATE`
	e, err := scanEntry(t.tx.QueryRow(ctx, query, entryID))
	if err != nil {
		return nil, readErr(err, "ledger entry")
	}
	return e, nil
}

// UpdateLedgerEntryStatus only touches pending rows, which keeps completed entries immutable.
func (t *pgxTx) UpdateLedgerEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, externalHash *string, now time.Time) error {
	query := `
		UPDATE ledger_entries
		SET status = $3, external_hash = COALESCE($4, external_hash), last_updated_at = $5
		WHERE entry_id = $1 AND status = $2;
	`
	tag, err := t.tx.Exec(ctx, query, entryID, domain.EntryPending, status, externalHash, now)
	if err != nil {
		return writeErr(err, portsrepo.ErrConflictDetected, "ledger entry "+entryID)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	current, err := t.FindLedgerEntryForUpdate(ctx, entryID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: ledger entry %s is %s", apperrors.ErrInvalidState, entryID, current.Status)
}

func (t *pgxTx) SaveUnmatchedDeposit(ctx context.Context, deposit domain.UnmatchedDeposit) (bool, error) {
	query := `
		INSERT INTO unmatched_deposits (external_hash, memo, amount, source, first_seen_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_hash) DO NOTHING;
	`
	tag, err := t.tx.Exec(ctx, query, deposit.ExternalHash, deposit.Memo, deposit.Amount, deposit.Source, deposit.FirstSeenAt)
	if err != nil {
		return false, writeErr(err, portsrepo.ErrConflictDetected, "unmatched deposit "+deposit.ExternalHash)
	}
	return tag.RowsAffected() == 1, nil
}
