package dto

import (
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/utils"
	"github.com/shopspring/decimal"
)

// ListItemRequest puts an owned item on the secondary market. Price is in TON.
type ListItemRequest struct {
	Price decimal.Decimal `json:"price" binding:"positive_decimal"`
}

// TransferItemRequest gifts an item to another account, addressed by external identity.
type TransferItemRequest struct {
	RecipientID string `json:"recipientID" binding:"required"`
}

// PlaceBidRequest creates a standing offer. Amount is in TON; ExpiryHours defaults to 24.
type PlaceBidRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"positive_decimal"`
	ExpiryHours int             `json:"expiryHours" binding:"omitempty,min=1,max=720"`
}

// ItemResponse defines the data returned for an item.
type ItemResponse struct {
	ItemID       string    `json:"itemID"`
	SeriesID     string    `json:"seriesID"`
	MintNumber   int       `json:"mintNumber"`
	OwnerID      *string   `json:"ownerID,omitempty"`
	IsListed     bool      `json:"isListed"`
	ListPrice    *int64    `json:"listPrice,omitempty"`
	ListPriceTON *string   `json:"listPriceTON,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToItemResponse converts a domain.Item to its DTO.
func ToItemResponse(item *domain.Item) ItemResponse {
	res := ItemResponse{
		ItemID:     item.ItemID,
		SeriesID:   item.SeriesID,
		MintNumber: item.MintNumber,
		OwnerID:    item.OwnerID,
		IsListed:   item.IsListed,
		ListPrice:  item.ListPrice,
		CreatedAt:  item.CreatedAt,
	}
	if item.ListPrice != nil {
		ton := utils.FormatTON(*item.ListPrice)
		res.ListPriceTON = &ton
	}
	return res
}

// OrderResponse defines the data returned for a completed sale.
type OrderResponse struct {
	OrderID    string           `json:"orderID"`
	Type       domain.OrderType `json:"type"`
	BuyerID    string           `json:"buyerID"`
	SellerID   *string          `json:"sellerID,omitempty"`
	Price      int64            `json:"price"`
	PriceTON   string           `json:"priceTON"`
	Royalty    int64            `json:"royalty"`
	Commission int64            `json:"commission"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// PurchaseResponse is returned by mint, buy and bid acceptance.
type PurchaseResponse struct {
	Item          ItemResponse  `json:"item"`
	Order         OrderResponse `json:"order"`
	BuyerBalance  int64         `json:"buyerBalance"`
	SellerBalance *int64        `json:"sellerBalance,omitempty"`
}

// ToPurchaseResponse converts a domain.Purchase to its DTO.
func ToPurchaseResponse(p *domain.Purchase) PurchaseResponse {
	return PurchaseResponse{
		Item: ToItemResponse(&p.Item),
		Order: OrderResponse{
			OrderID:    p.Order.OrderID,
			Type:       p.Order.Type,
			BuyerID:    p.Order.BuyerID,
			SellerID:   p.Order.SellerID,
			Price:      p.Order.Price,
			PriceTON:   utils.FormatTON(p.Order.Price),
			Royalty:    p.Order.Royalty,
			Commission: p.Order.Commission,
			CreatedAt:  p.Order.CreatedAt,
		},
		BuyerBalance:  p.BuyerBalance,
		SellerBalance: p.SellerBalance,
	}
}

// BidResponse defines the data returned for a bid.
type BidResponse struct {
	BidID     string           `json:"bidID"`
	ItemID    string           `json:"itemID"`
	BidderID  string           `json:"bidderID"`
	Amount    int64            `json:"amount"`
	AmountTON string           `json:"amountTON"`
	Status    domain.BidStatus `json:"status"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// ToBidResponse converts a domain.Bid to its DTO.
func ToBidResponse(b *domain.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		ItemID:    b.ItemID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		AmountTON: utils.FormatTON(b.Amount),
		Status:    b.Status,
		ExpiresAt: b.ExpiresAt,
	}
}
