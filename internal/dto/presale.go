package dto

import (
	"github.com/SscSPs/collectibles_market/internal/core/domain"
)

// PledgeRequest buys raffle tickets.
type PledgeRequest struct {
	Tickets int `json:"tickets" binding:"required,min=1"`
}

// PledgeResponse defines the data returned for a pledge.
type PledgeResponse struct {
	PledgeID     string              `json:"pledgeID"`
	PresaleID    string              `json:"presaleID"`
	AmountLocked int                 `json:"amountLocked"`
	Wins         int                 `json:"wins"`
	Status       domain.PledgeStatus `json:"status"`
}

// ToPledgeResponse converts a domain.PresalePledge to its DTO.
func ToPledgeResponse(p *domain.PresalePledge) PledgeResponse {
	return PledgeResponse{
		PledgeID:     p.PledgeID,
		PresaleID:    p.PresaleID,
		AmountLocked: p.AmountLocked,
		Wins:         p.Wins,
		Status:       p.Status,
	}
}

// DrawResponse wraps the per-pledge outcomes of a draw.
type DrawResponse struct {
	PresaleID string                 `json:"presaleID"`
	WinLimit  int                    `json:"winLimit"`
	Tickets   int                    `json:"tickets"`
	Outcomes  []domain.PledgeOutcome `json:"outcomes"`
}

// ToDrawResponse converts a domain.DrawResult to its DTO.
func ToDrawResponse(r *domain.DrawResult) DrawResponse {
	return DrawResponse{
		PresaleID: r.PresaleID,
		WinLimit:  r.WinLimit,
		Tickets:   r.Tickets,
		Outcomes:  r.Outcomes,
	}
}
