package dto

import (
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/utils"
)

// AccountResponse defines the data returned for the caller's account.
type AccountResponse struct {
	AccountID   string    `json:"accountID"`
	ExternalID  string    `json:"externalID"`
	Username    string    `json:"username"`
	Balance     int64     `json:"balance"`
	BalanceTON  string    `json:"balanceTON"`
	DepositMemo string    `json:"depositMemo"`
	ReferredBy  *string   `json:"referredBy,omitempty"`
	IsAdmin     bool      `json:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:   acc.AccountID,
		ExternalID:  acc.ExternalID,
		Username:    acc.Username,
		Balance:     acc.Balance,
		BalanceTON:  utils.FormatTON(acc.Balance),
		DepositMemo: acc.DepositMemo,
		ReferredBy:  acc.ReferredBy,
		IsAdmin:     acc.IsAdmin,
		CreatedAt:   acc.CreatedAt,
	}
}

// LedgerEntryResponse is one funds-movement record.
type LedgerEntryResponse struct {
	EntryID        string             `json:"entryID"`
	Type           domain.EntryType   `json:"type"`
	Amount         int64              `json:"amount"`
	AmountTON      string             `json:"amountTON"`
	CounterpartyID *string            `json:"counterpartyID,omitempty"`
	ItemID         *string            `json:"itemID,omitempty"`
	OrderID        *string            `json:"orderID,omitempty"`
	ExternalHash   *string            `json:"externalHash,omitempty"`
	Destination    *string            `json:"destination,omitempty"`
	Status         domain.EntryStatus `json:"status"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// ListLedgerEntriesResponse wraps a page of ledger entries.
type ListLedgerEntriesResponse struct {
	Entries   []LedgerEntryResponse `json:"entries"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ListLedgerEntriesParams defines the query parameters for paging ledger history.
type ListLedgerEntriesParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ToLedgerEntryResponse converts a domain.LedgerEntry to its DTO.
func ToLedgerEntryResponse(e domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		EntryID:        e.EntryID,
		Type:           e.Type,
		Amount:         e.Amount,
		AmountTON:      utils.FormatTON(e.Amount),
		CounterpartyID: e.CounterpartyID,
		ItemID:         e.ItemID,
		OrderID:        e.OrderID,
		ExternalHash:   e.ExternalHash,
		Destination:    e.Destination,
		Status:         e.Status,
		CreatedAt:      e.CreatedAt,
	}
}

// ToListLedgerEntriesResponse converts a page of entries.
func ToListLedgerEntriesResponse(entries []domain.LedgerEntry, nextToken *string) ListLedgerEntriesResponse {
	res := ListLedgerEntriesResponse{
		Entries:   make([]LedgerEntryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i, e := range entries {
		res.Entries[i] = ToLedgerEntryResponse(e)
	}
	return res
}
