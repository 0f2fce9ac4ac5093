package domain

import "time"

// PresaleStatus tracks whether the raffle has been resolved.
type PresaleStatus string

const (
	PresaleOpen  PresaleStatus = "open"
	PresaleDrawn PresaleStatus = "drawn"
)

// PreSale is a time-boxed raffle allocating part of a series' primary supply.
type PreSale struct {
	PresaleID   string        `json:"presaleID"`
	SeriesID    string        `json:"seriesID"`
	Price       int64         `json:"price"` // per ticket
	TotalSupply int           `json:"totalSupply"`
	SoldCount   int           `json:"soldCount"` // units allocated to winners
	MaxPerUser  int           `json:"maxPerUser"`
	StartDate   time.Time     `json:"startDate"`
	EndDate     time.Time     `json:"endDate"`
	Status      PresaleStatus `json:"status"`
	AuditFields
}

// Remaining is the raffle allocation not yet handed out.
func (p PreSale) Remaining() int {
	if r := p.TotalSupply - p.SoldCount; r > 0 {
		return r
	}
	return 0
}

// AcceptsPledges reports whether tickets can be bought at now.
func (p PreSale) AcceptsPledges(now time.Time) bool {
	return p.Status == PresaleOpen && !now.Before(p.StartDate) && now.Before(p.EndDate)
}

// PledgeStatus is the raffle outcome of a pledge.
type PledgeStatus string

const (
	PledgePending  PledgeStatus = "pending_draw"
	PledgeWon      PledgeStatus = "won"
	PledgeLost     PledgeStatus = "lost"
	PledgeRefunded PledgeStatus = "refunded"
)

// PresalePledge is a locked-funds ticket purchase into a presale.
type PresalePledge struct {
	PledgeID     string       `json:"pledgeID"`
	PresaleID    string       `json:"presaleID"`
	AccountID    string       `json:"accountID"`
	AmountLocked int          `json:"amountLocked"`
	Wins         int          `json:"wins"`
	Status       PledgeStatus `json:"status"`
	AuditFields
}

// Losses is the number of locked tickets that did not win.
func (p PresalePledge) Losses() int {
	return p.AmountLocked - p.Wins
}
