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

const accountColumns = `account_id, external_id, username, balance, referred_by, deposit_memo, is_admin, created_at, last_updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(
		&acc.AccountID,
		&acc.ExternalID,
		&acc.Username,
		&acc.Balance,
		&acc.ReferredBy,
		&acc.DepositMemo,
		&acc.IsAdmin,
		&acc.CreatedAt,
		&acc.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (t *pgxTx) findAccount(ctx context.Context, where string, arg any, lock bool) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where
	if lock {
		query += ` FOR UPDATE`
	}
	acc, err := scanAccount(t.tx.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, readErr(err, "account")
	}
	return acc, nil
}

func (t *pgxTx) FindAccountForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	return t.findAccount(ctx, "account_id = $1", accountID, true)
}

func (t *pgxTx) FindAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return t.findAccount(ctx, "account_id = $1", accountID, false)
}

func (t *pgxTx) FindAccountByExternalID(ctx context.Context, externalID string) (*domain.Account, error) {
	return t.findAccount(ctx, "external_id = $1", externalID, false)
}

func (t *pgxTx) FindAccountByDepositMemo(ctx context.Context, memo string) (*domain.Account, error) {
	return t.findAccount(ctx, "deposit_memo = $1", memo, true)
}

func (t *pgxTx) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := t.tx.Exec(ctx, query,
		account.AccountID,
		account.ExternalID,
		account.Username,
		account.Balance,
		account.ReferredBy,
		account.DepositMemo,
		account.IsAdmin,
		account.CreatedAt,
		account.LastUpdatedAt,
	)
	if err != nil {
		return writeErr(err, portsrepo.ErrConflictDetected, "account "+account.AccountID)
	}
	return nil
}

// AdjustBalance applies delta only if the result stays non-negative. A zero-row
// update is then told apart as missing account or insufficient funds.
func (t *pgxTx) AdjustBalance(ctx context.Context, accountID string, delta int64, now time.Time) (int64, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3
		WHERE account_id = $1 AND balance + $2 >= 0
		RETURNING balance;
	`
	var balance int64
	err := t.tx.QueryRow(ctx, query, accountID, delta, now).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if err := readErr(err, "account balance"); err != apperrors.ErrNotFound {
		return 0, err
	}

	acc, err := t.FindAccountForUpdate(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return acc.Balance, fmt.Errorf("%w: account %s", apperrors.ErrInsufficientFunds, accountID)
}
