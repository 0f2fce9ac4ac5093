package domain

import "time"

// PricePoint is one completed sale in an item's price history.
type PricePoint struct {
	OrderID   string    `json:"orderID"`
	Price     int64     `json:"price"`
	Type      OrderType `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// MarketStats aggregates floor price and volume for a series or collection.
type MarketStats struct {
	ScopeID     string `json:"scopeID"`
	FloorPrice  int64  `json:"floorPrice"`
	FromListing bool   `json:"fromListing"` // false when falling back to the primary price
	Volume      int64  `json:"volume"`
	Sales       int64  `json:"sales"`
}
