package dto

import (
	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/utils"
	"github.com/shopspring/decimal"
)

// WithdrawRequest sends part of the balance to an external wallet. Amount is in TON.
type WithdrawRequest struct {
	Destination string          `json:"destination" binding:"required,ton_address"`
	Amount      decimal.Decimal `json:"amount" binding:"positive_decimal"`
}

// StatsResponse defines the aggregated market metrics of a series or collection.
type StatsResponse struct {
	ScopeID       string `json:"scopeID"`
	FloorPrice    int64  `json:"floorPrice"`
	FloorPriceTON string `json:"floorPriceTON"`
	FromListing   bool   `json:"fromListing"`
	Volume        int64  `json:"volume"`
	VolumeTON     string `json:"volumeTON"`
	Sales         int64  `json:"sales"`
}

// ToStatsResponse converts domain.MarketStats to its DTO.
func ToStatsResponse(s *domain.MarketStats) StatsResponse {
	return StatsResponse{
		ScopeID:       s.ScopeID,
		FloorPrice:    s.FloorPrice,
		FloorPriceTON: utils.FormatTON(s.FloorPrice),
		FromListing:   s.FromListing,
		Volume:        s.Volume,
		VolumeTON:     utils.FormatTON(s.Volume),
		Sales:         s.Sales,
	}
}

// PriceHistoryResponse lists completed sales of one item, oldest first.
type PriceHistoryResponse struct {
	ItemID string              `json:"itemID"`
	Points []domain.PricePoint `json:"points"`
}
