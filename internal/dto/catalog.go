package dto

import (
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/utils"
	"github.com/shopspring/decimal"
)

// CreateSeriesRequest defines the data needed to open a new series for minting.
type CreateSeriesRequest struct {
	CollectionID   string          `json:"collectionID" binding:"required"`
	Name           string          `json:"name" binding:"required"`
	TotalSupply    int             `json:"totalSupply" binding:"required,min=1,max=1000000"`
	Price          decimal.Decimal `json:"price" binding:"positive_decimal"`
	RoyaltyPercent int             `json:"royaltyPercent" binding:"min=0,max=100"`
}

// CreatePresaleRequest defines the data needed to open a raffle over a series.
type CreatePresaleRequest struct {
	SeriesID    string          `json:"seriesID" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"positive_decimal"`
	TotalSupply int             `json:"totalSupply" binding:"required,min=1"`
	MaxPerUser  int             `json:"maxPerUser" binding:"required,min=1"`
	StartDate   time.Time       `json:"startDate" binding:"required"`
	EndDate     time.Time       `json:"endDate" binding:"required,gtfield=StartDate"`
}

// SeriesResponse defines the data returned for a series.
type SeriesResponse struct {
	SeriesID       string `json:"seriesID"`
	CollectionID   string `json:"collectionID"`
	Name           string `json:"name"`
	TotalSupply    int    `json:"totalSupply"`
	MintedCount    int    `json:"mintedCount"`
	Price          int64  `json:"price"`
	PriceTON       string `json:"priceTON"`
	RoyaltyPercent int    `json:"royaltyPercent"`
	IsActive       bool   `json:"isActive"`
}

// ToSeriesResponse converts a domain.Series to its DTO.
func ToSeriesResponse(s *domain.Series) SeriesResponse {
	return SeriesResponse{
		SeriesID:       s.SeriesID,
		CollectionID:   s.CollectionID,
		Name:           s.Name,
		TotalSupply:    s.TotalSupply,
		MintedCount:    s.MintedCount,
		Price:          s.Price,
		PriceTON:       utils.FormatTON(s.Price),
		RoyaltyPercent: s.RoyaltyPercent,
		IsActive:       s.IsActive,
	}
}

// PresaleResponse defines the data returned for a presale.
type PresaleResponse struct {
	PresaleID   string               `json:"presaleID"`
	SeriesID    string               `json:"seriesID"`
	Price       int64                `json:"price"`
	PriceTON    string               `json:"priceTON"`
	TotalSupply int                  `json:"totalSupply"`
	SoldCount   int                  `json:"soldCount"`
	MaxPerUser  int                  `json:"maxPerUser"`
	StartDate   time.Time            `json:"startDate"`
	EndDate     time.Time            `json:"endDate"`
	Status      domain.PresaleStatus `json:"status"`
}

// ToPresaleResponse converts a domain.PreSale to its DTO.
func ToPresaleResponse(p *domain.PreSale) PresaleResponse {
	return PresaleResponse{
		PresaleID:   p.PresaleID,
		SeriesID:    p.SeriesID,
		Price:       p.Price,
		PriceTON:    utils.FormatTON(p.Price),
		TotalSupply: p.TotalSupply,
		SoldCount:   p.SoldCount,
		MaxPerUser:  p.MaxPerUser,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Status:      p.Status,
	}
}
