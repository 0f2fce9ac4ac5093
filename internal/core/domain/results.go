package domain

// Purchase is the committed outcome of a mint, buy or bid acceptance.
type Purchase struct {
	Item  Item  `json:"item"`
	Order Order `json:"order"`
	// BuyerBalance and SellerBalance are the balances right after commit.
	BuyerBalance  int64  `json:"buyerBalance"`
	SellerBalance *int64 `json:"sellerBalance,omitempty"`
}

// PledgeOutcome is the draw result for one pledge.
type PledgeOutcome struct {
	PledgeID    string       `json:"pledgeID"`
	AccountID   string       `json:"accountID"`
	Wins        int          `json:"wins"`
	Losses      int          `json:"losses"`
	Refund      int64        `json:"refund"`
	MintNumbers []int        `json:"mintNumbers"`
	Status      PledgeStatus `json:"status"`
}

// DrawResult summarizes a resolved presale.
type DrawResult struct {
	PresaleID string          `json:"presaleID"`
	WinLimit  int             `json:"winLimit"`
	Tickets   int             `json:"tickets"`
	Outcomes  []PledgeOutcome `json:"outcomes"`
}

// PollReport counts what one deposit polling cycle did.
type PollReport struct {
	Observed   int `json:"observed"`
	Credited   int `json:"credited"`
	Duplicates int `json:"duplicates"`
	Unmatched  int `json:"unmatched"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// Identity is the trusted caller identity handed over by the auth collaborator.
type Identity struct {
	ExternalID         string
	Username           string
	ReferrerExternalID string
}
