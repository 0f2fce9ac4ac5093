package domain

// Account is a marketplace user holding a fungible balance in nanoTON.
type Account struct {
	AccountID   string  `json:"accountID"`
	ExternalID  string  `json:"externalID"` // identity issued by the auth collaborator
	Username    string  `json:"username"`
	Balance     int64   `json:"balance"`
	ReferredBy  *string `json:"referredBy,omitempty"`
	DepositMemo string  `json:"depositMemo"` // unique, correlates external payments
	IsAdmin     bool    `json:"isAdmin"`
	AuditFields
}

// CanAfford reports whether the balance covers amount.
func (a Account) CanAfford(amount int64) bool {
	return amount >= 0 && a.Balance >= amount
}
