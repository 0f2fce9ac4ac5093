package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/dto"
	"github.com/SscSPs/collectibles_market/internal/middleware"
	"github.com/SscSPs/collectibles_market/internal/utils"
	"github.com/gin-gonic/gin"
)

type bidHandler struct {
	bidService portssvc.BidSvcFacade
}

func registerBidRoutes(rg *gin.RouterGroup, bs portssvc.BidSvcFacade) {
	h := &bidHandler{bidService: bs}

	rg.POST("/items/:id/bids", h.placeBid)

	bids := rg.Group("/bids")
	{
		bids.POST("/:id/accept", h.acceptBid)
		bids.POST("/:id/reject", h.rejectBid)
		bids.POST("/:id/cancel", h.cancelBid)
	}
}

// placeBid godoc
// @Summary Place a bid on an item
// @Description Bids are not escrowed; funds are checked again on acceptance
// @Tags bids
// @Accept  json
// @Produce  json
// @Param   id path string true "Item ID"
// @Param   bid body dto.PlaceBidRequest true "Bid amount in TON and expiry"
// @Success 201 {object} dto.BidResponse
// @Failure 400 {object} map[string]string "Invalid amount or expiry"
// @Failure 402 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /items/{id}/bids [post]
func (h *bidHandler) placeBid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	bidderID, ok := callerID(c, logger)
	if !ok {
		return
	}
	var req dto.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PlaceBid", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	amount, err := utils.ToNano(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bid, err := h.bidService.PlaceBid(c.Request.Context(), c.Param("id"), bidderID, amount, req.ExpiryHours)
	if err != nil {
		respondError(c, logger, err, "Failed to place bid")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBidResponse(bid))
}

// acceptBid godoc
// @Summary Accept a bid on an owned item
// @Tags bids
// @Produce  json
// @Param   id path string true "Bid ID"
// @Success 200 {object} dto.PurchaseResponse
// @Failure 402 {object} map[string]string "Bidder cannot pay"
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 409 {object} map[string]string "Bid no longer active"
// @Failure 422 {object} map[string]string "Bid expired"
// @Security BearerAuth
// @Router /bids/{id}/accept [post]
func (h *bidHandler) acceptBid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID, ok := callerID(c, logger)
	if !ok {
		return
	}

	purchase, err := h.bidService.AcceptBid(c.Request.Context(), c.Param("id"), ownerID)
	if err != nil {
		respondError(c, logger, err, "Failed to accept bid")
		return
	}
	c.JSON(http.StatusOK, dto.ToPurchaseResponse(purchase))
}

// rejectBid godoc
// @Summary Reject a bid on an owned item
// @Tags bids
// @Produce  json
// @Param   id path string true "Bid ID"
// @Success 200 {object} dto.BidResponse
// @Security BearerAuth
// @Router /bids/{id}/reject [post]
func (h *bidHandler) rejectBid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID, ok := callerID(c, logger)
	if !ok {
		return
	}

	bid, err := h.bidService.RejectBid(c.Request.Context(), c.Param("id"), ownerID)
	if err != nil {
		respondError(c, logger, err, "Failed to reject bid")
		return
	}
	c.JSON(http.StatusOK, dto.ToBidResponse(bid))
}

// cancelBid godoc
// @Summary Cancel one of the caller's bids
// @Tags bids
// @Produce  json
// @Param   id path string true "Bid ID"
// @Success 200 {object} dto.BidResponse
// @Security BearerAuth
// @Router /bids/{id}/cancel [post]
func (h *bidHandler) cancelBid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	bidderID, ok := callerID(c, logger)
	if !ok {
		return
	}

	bid, err := h.bidService.CancelBid(c.Request.Context(), c.Param("id"), bidderID)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel bid")
		return
	}
	c.JSON(http.StatusOK, dto.ToBidResponse(bid))
}
