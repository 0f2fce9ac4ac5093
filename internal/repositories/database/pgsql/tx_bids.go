package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
)

func (t *pgxTx) SaveBid(ctx context.Context, bid domain.Bid) error {
	query := `
		INSERT INTO bids (bid_id, item_id, bidder_id, amount, status, expires_at, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := t.tx.Exec(ctx, query,
		bid.BidID,
		bid.ItemID,
		bid.BidderID,
		bid.Amount,
		bid.Status,
		bid.ExpiresAt,
		bid.CreatedAt,
		bid.LastUpdatedAt,
	)
	if err != nil {
		return writeErr(err, portsrepo.ErrConflictDetected, "bid "+bid.BidID)
	}
	return nil
}

const bidColumns = `bid_id, item_id, bidder_id, amount, status, expires_at, created_at, last_updated_at`

func (t *pgxTx) FindBid(ctx context.Context, bidID string) (*domain.Bid, error) {
	return t.findBid(ctx, `SELECT `+bidColumns+` FROM bids WHERE bid_id = $1`, bidID)
}

func (t *pgxTx) FindBidForUpdate(ctx context.Context, bidID string) (*domain.Bid, error) {
	return t.findBid(ctx, `SELECT `+bidColumns+` FROM bids WHERE bid_id = $1 FOR UPDATE`, bidID)
}

func (t *pgxTx) findBid(ctx context.Context, query, bidID string) (*domain.Bid, error) {
	var bid domain.Bid
	err := t.tx.QueryRow(ctx, query, bidID).Scan(
		&bid.BidID,
		&bid.ItemID,
		&bid.BidderID,
		&bid.Amount,
		&bid.Status,
		&bid.ExpiresAt,
		&bid.CreatedAt,
		&bid.LastUpdatedAt,
	)
	if err != nil {
		return nil, readErr(err, "bid")
	}
	return &bid, nil
}

func (t *pgxTx) UpdateBidStatus(ctx context.Context, bidID string, status domain.BidStatus, now time.Time) error {
	tag, err := t.tx.Exec(ctx, `UPDATE bids SET status = $2, last_updated_at = $3 WHERE bid_id = $1`, bidID, status, now)
	if err != nil {
		return writeErr(err, portsrepo.ErrConflictDetected, "bid "+bidID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (t *pgxTx) RejectActiveBids(ctx context.Context, itemID string, exceptBidID string, now time.Time) (int, error) {
	query := `
		UPDATE bids
		SET status = $3, last_updated_at = $4
		WHERE item_id = $1 AND status = $2 AND bid_id <> $5;
	`
	tag, err := t.tx.Exec(ctx, query, itemID, domain.BidActive, domain.BidRejected, now, exceptBidID)
	if err != nil {
		return 0, writeErr(err, portsrepo.ErrConflictDetected, "bids of item "+itemID)
	}
	return int(tag.RowsAffected()), nil
}

func (t *pgxTx) ExpireBids(ctx context.Context, now time.Time) (int, error) {
	query := `
		UPDATE bids
		SET status = $2, last_updated_at = $3
		WHERE status = $1 AND expires_at <= $3;
	`
	tag, err := t.tx.Exec(ctx, query, domain.BidActive, domain.BidExpired, now)
	if err != nil {
		return 0, writeErr(err, portsrepo.ErrConflictDetected, "expired bids")
	}
	return int(tag.RowsAffected()), nil
}
