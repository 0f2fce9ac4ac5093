package domain

import "time"

// EntryType names the balance-affecting event recorded by a ledger entry.
type EntryType string

const (
	EntryMint             EntryType = "mint"
	EntryBuy              EntryType = "buy"
	EntrySell             EntryType = "sell"
	EntryReferral         EntryType = "referral"
	EntryTransferIn       EntryType = "transfer_in"
	EntryTransferOut      EntryType = "transfer_out"
	EntryPresaleLock      EntryType = "presale_lock"
	EntryRefund           EntryType = "refund"
	EntryDeposit          EntryType = "deposit"
	EntryWithdrawal       EntryType = "withdrawal"
	EntryWithdrawalRefund EntryType = "withdrawal_refund"
)

// EntryStatus is the settlement state of a ledger entry.
type EntryStatus string

const (
	EntryPending   EntryStatus = "pending"
	EntryCompleted EntryStatus = "completed"
	EntryFailed    EntryStatus = "failed"
)

// LedgerEntry is an append-only audit record. Completed entries are never mutated.
type LedgerEntry struct {
	EntryID        string      `json:"entryID"`
	AccountID      string      `json:"accountID"`
	Type           EntryType   `json:"type"`
	Amount         int64       `json:"amount"` // signed delta applied to the account balance
	CounterpartyID *string     `json:"counterpartyID,omitempty"`
	ItemID         *string     `json:"itemID,omitempty"`
	OrderID        *string     `json:"orderID,omitempty"`
	ExternalHash   *string     `json:"externalHash,omitempty"`
	Destination    *string     `json:"destination,omitempty"`
	Status         EntryStatus `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
	LastUpdatedAt  time.Time   `json:"lastUpdatedAt"`
}

// UnmatchedDeposit is an inbound external transfer whose memo resolved to no account.
type UnmatchedDeposit struct {
	ExternalHash string    `json:"externalHash"`
	Memo         string    `json:"memo"`
	Amount       int64     `json:"amount"`
	Source       string    `json:"source"`
	FirstSeenAt  time.Time `json:"firstSeenAt"`
}

// InboundTransfer is one payment observed on the external ledger.
type InboundTransfer struct {
	Hash   string
	Memo   string
	Amount int64
	Source string
}
