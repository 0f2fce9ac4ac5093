package accounting

import (
	"fmt"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// Settlement is the split of one sale price between the parties.
type Settlement struct {
	Price        int64
	Royalty      int64 // withheld from the seller
	SellerCredit int64
	Commission   int64 // paid to the buyer's referrer
}

// SettleSale splits price for a sale. Royalty and commission are floored so
// truncation always favors the paying party. sellerPaid is false for primary
// sales, where no seller is credited and no royalty applies.
func SettleSale(price int64, royaltyPercent, referralPercent int, sellerPaid bool, hasReferrer bool) (Settlement, error) {
	if price <= 0 {
		return Settlement{}, fmt.Errorf("sale price must be positive, got %d", price)
	}
	if royaltyPercent < 0 || royaltyPercent > 100 {
		return Settlement{}, fmt.Errorf("royalty percent must be within [0, 100], got %d", royaltyPercent)
	}
	s := Settlement{Price: price}
	if sellerPaid {
		s.Royalty = domain.PercentOf(price, royaltyPercent)
		s.SellerCredit = price - s.Royalty
	}
	if hasReferrer {
		s.Commission = domain.PercentOf(price, referralPercent)
	}
	return s, nil
}

// SumEntries returns the net balance delta recorded by entries. A failed withdrawal
// keeps its debit and is offset by its withdrawal_refund entry, so every status counts.
func SumEntries(entries []domain.LedgerEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Amount
	}
	return total
}
