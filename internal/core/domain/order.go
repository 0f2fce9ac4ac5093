package domain

import "time"

// OrderType distinguishes where an item was acquired.
type OrderType string

const (
	OrderPrimary   OrderType = "primary"
	OrderSecondary OrderType = "secondary"
	OrderPresale   OrderType = "presale"
)

// Order is the immutable record of a completed sale.
type Order struct {
	OrderID    string    `json:"orderID"`
	ItemID     string    `json:"itemID"`
	SeriesID   string    `json:"seriesID"`
	BuyerID    string    `json:"buyerID"`
	SellerID   *string   `json:"sellerID,omitempty"`
	Price      int64     `json:"price"`
	Royalty    int64     `json:"royalty"`
	Commission int64     `json:"commission"`
	Type       OrderType `json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
}
