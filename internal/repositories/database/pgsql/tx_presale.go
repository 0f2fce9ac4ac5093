package pgsql

import (
	"context"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

const (
	presaleColumns = `presale_id, series_id, price, total_supply, sold_count, max_per_user, start_date, end_date, status, created_at, last_updated_at`
	pledgeColumns  = `pledge_id, presale_id, account_id, amount_locked, wins, status, created_at, last_updated_at`
)

func scanPresale(row pgx.Row) (*domain.PreSale, error) {
	var p domain.PreSale
	err := row.Scan(
		&p.PresaleID,
		&p.SeriesID,
		&p.Price,
		&p.TotalSupply,
		&p.SoldCount,
		&p.MaxPerUser,
		&p.StartDate,
		&p.EndDate,
		&p.Status,
		&p.CreatedAt,
		&p.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *pgxTx) SavePresale(ctx context.Context, presale domain.PreSale) error {
	query := `
		INSERT INTO presales (` + presaleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := t.tx.Exec(ctx, query,
		presale.PresaleID,
		presale.SeriesID,
		presale.Price,
		presale.TotalSupply,
		presale.SoldCount,
		presale.MaxPerUser,
		presale.StartDate,
		presale.EndDate,
		presale.Status,
		presale.CreatedAt,
		presale.LastUpdatedAt,
	)
	if err != nil {
		return writeErr(err, apperrors.ErrDuplicate, "presale "+presale.PresaleID)
	}
	return nil
}

// FindPresaleForUpdate serializes pledges and the draw on the presale row.
func (t *pgxTx) FindPresaleForUpdate(ctx context.Context, presaleID string) (*domain.PreSale, error) {
	query := `SELECT ` + presaleColumns + ` FROM presales WHERE presale_id = $1 FOR UPDATE`
	p, err := scanPresale(t.tx.QueryRow(ctx, query, presaleID))
	if err != nil {
		return nil, readErr(err, "presale")
	}
	return p, nil
}

func (t *pgxTx) UpdatePresale(ctx context.Context, presale domain.PreSale) error {
	query := `
		UPDATE presales
		SET sold_count = $2, status = $3, last_updated_at = $4
		WHERE presale_id = $1;
	`
	tag, err := t.tx.Exec(ctx, query, presale.PresaleID, presale.SoldCount, presale.Status, presale.LastUpdatedAt)
	if err != nil {
		return writeErr(err, portsrepo.ErrConflictDetected, "presale "+presale.PresaleID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (t *pgxTx) SumPledged(ctx context.Context, presaleID, accountID string) (int, error) {
	query := `SELECT COALESCE(SUM(amount_locked), 0) FROM presale_pledges WHERE presale_id = $1 AND account_id = $2`
	var total int
	if err := t.tx.QueryRow(ctx, query, presaleID, accountID).Scan(&total); err != nil {
		return 0, readErr(err, "pledged tickets")
	}
	return total, nil
}

func (t *pgxTx) SavePledge(ctx context.Context, pledge domain.PresalePledge) error {
	query := `
		INSERT INTO presale_pledges (` + pledgeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := t.tx.Exec(ctx, query,
		pledge.PledgeID,
		pledge.PresaleID,
		pledge.AccountID,
		pledge.AmountLocked,
		pledge.Wins,
		pledge.Status,
		pledge.CreatedAt,
		pledge.LastUpdatedAt,
	)
	if err != nil {
		return writeErr(err, portsrepo.ErrConflictDetected, "pledge "+pledge.PledgeID)
	}
	return nil
}

// ListPendingPledges orders by creation then id so a seeded draw is reproducible.
func (t *pgxTx) ListPendingPledges(ctx context.Context, presaleID string) ([]domain.PresalePledge, error) {
	query := `
		SELECT ` + pledgeColumns + `
		FROM presale_pledges
		WHERE presale_id = $1 AND status = $2
		ORDER BY created_at, pledge_id
		FOR UPDATE;
	`
	rows, err := t.tx.Query(ctx, query, presaleID, domain.PledgePending)
	if err != nil {
		return nil, readErr(err, "pledges")
	}
	defer rows.Close()

	var pledges []domain.PresalePledge
	for rows.Next() {
		var p domain.PresalePledge
		if err := rows.Scan(
			&p.PledgeID,
			&p.PresaleID,
			&p.AccountID,
			&p.AmountLocked,
			&p.Wins,
			&p.Status,
			&p.CreatedAt,
			&p.LastUpdatedAt,
		); err != nil {
			return nil, readErr(err, "pledge row")
		}
		pledges = append(pledges, p)
	}
	if err := rows.Err(); err != nil {
		return nil, readErr(err, "pledges")
	}
	return pledges, nil
}

func (t *pgxTx) UpdatePledge(ctx context.Context, pledge domain.PresalePledge) error {
	query := `
		UPDATE presale_pledges
		SET wins = $2, status = $3, last_updated_at = $4
		WHERE pledge_id = $1;
	`
	tag, err := t.tx.Exec(ctx, query, pledge.PledgeID, pledge.Wins, pledge.Status, pledge.LastUpdatedAt)
	if err != nil {
		return writeErr(err, portsrepo.ErrConflictDetected, "pledge "+pledge.PledgeID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
