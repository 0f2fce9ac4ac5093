package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/dto"
	"github.com/SscSPs/collectibles_market/internal/middleware"
	"github.com/gin-gonic/gin"
)

type statsHandler struct {
	statsService portssvc.StatsSvc
}

func registerStatsRoutes(rg *gin.RouterGroup, ss portssvc.StatsSvc) {
	h := &statsHandler{statsService: ss}

	rg.GET("/series/:id/stats", h.seriesStats)
	rg.GET("/collections/:id/stats", h.collectionStats)
	rg.GET("/items/:id/history", h.priceHistory)
}

// seriesStats godoc
// @Summary Floor price and volume of a series
// @Description Values may be up to the cache TTL stale
// @Tags stats
// @Produce  json
// @Param   id path string true "Series ID"
// @Success 200 {object} dto.StatsResponse
// @Security BearerAuth
// @Router /series/{id}/stats [get]
func (h *statsHandler) seriesStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	stats, err := h.statsService.SeriesStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to compute series stats")
		return
	}
	c.JSON(http.StatusOK, dto.ToStatsResponse(stats))
}

// collectionStats godoc
// @Summary Floor price and volume of a collection
// @Tags stats
// @Produce  json
// @Param   id path string true "Collection ID"
// @Success 200 {object} dto.StatsResponse
// @Security BearerAuth
// @Router /collections/{id}/stats [get]
func (h *statsHandler) collectionStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	stats, err := h.statsService.CollectionStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to compute collection stats")
		return
	}
	c.JSON(http.StatusOK, dto.ToStatsResponse(stats))
}

// priceHistory godoc
// @Summary Completed sales of an item, oldest first
// @Tags stats
// @Produce  json
// @Param   id path string true "Item ID"
// @Success 200 {object} dto.PriceHistoryResponse
// @Security BearerAuth
// @Router /items/{id}/history [get]
func (h *statsHandler) priceHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	itemID := c.Param("id")
	points, err := h.statsService.PriceHistory(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, logger, err, "Failed to load price history")
		return
	}
	c.JSON(http.StatusOK, dto.PriceHistoryResponse{ItemID: itemID, Points: points})
}
