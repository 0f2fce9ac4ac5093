package domain

// Series is a capped-supply template of items sharing artwork, price and royalty policy.
type Series struct {
	SeriesID       string `json:"seriesID"`
	CollectionID   string `json:"collectionID"`
	Name           string `json:"name"`
	TotalSupply    int    `json:"totalSupply"`
	MintedCount    int    `json:"mintedCount"`
	Price          int64  `json:"price"`
	RoyaltyPercent int    `json:"royaltyPercent"`
	IsActive       bool   `json:"isActive"`
	AuditFields
}

// SoldOut reports whether every mint number has been assigned.
func (s Series) SoldOut() bool {
	return s.MintedCount >= s.TotalSupply
}

// Royalty is the part of a secondary sale price routed away from the seller.
func (s Series) Royalty(price int64) int64 {
	return PercentOf(price, s.RoyaltyPercent)
}

// AvailableMintNumbers returns [1..TotalSupply] minus taken, in ascending order.
func (s Series) AvailableMintNumbers(taken []int) []int {
	used := make(map[int]struct{}, len(taken))
	for _, n := range taken {
		used[n] = struct{}{}
	}
	available := make([]int, 0, s.TotalSupply-len(used))
	for n := 1; n <= s.TotalSupply; n++ {
		if _, ok := used[n]; !ok {
			available = append(available, n)
		}
	}
	return available
}

// Item is one uniquely numbered unit of a series. It exists only once minted.
type Item struct {
	ItemID     string  `json:"itemID"`
	SeriesID   string  `json:"seriesID"`
	MintNumber int     `json:"mintNumber"`
	OwnerID    *string `json:"ownerID,omitempty"`
	IsListed   bool    `json:"isListed"`
	ListPrice  *int64  `json:"listPrice,omitempty"`
	AuditFields
}

// IsOwnedBy reports whether accountID currently owns the item.
func (i Item) IsOwnedBy(accountID string) bool {
	return i.OwnerID != nil && *i.OwnerID == accountID
}

// TransferTo moves ownership and clears any listing.
func (i *Item) TransferTo(accountID string) {
	owner := accountID
	i.OwnerID = &owner
	i.IsListed = false
	i.ListPrice = nil
}
