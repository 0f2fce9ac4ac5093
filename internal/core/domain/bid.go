package domain

import "time"

// BidStatus is the lifecycle state of a bid.
type BidStatus string

const (
	BidActive    BidStatus = "active"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidExpired   BidStatus = "expired"
	BidCancelled BidStatus = "cancelled"
)

// Bid is a standing, non-escrowed offer from a non-owner to buy an item.
type Bid struct {
	BidID     string    `json:"bidID"`
	ItemID    string    `json:"itemID"`
	BidderID  string    `json:"bidderID"`
	Amount    int64     `json:"amount"`
	Status    BidStatus `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
	AuditFields
}

// IsExpired reports whether the bid's soft deadline has passed at now.
func (b Bid) IsExpired(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}
