package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/dto"
	"github.com/SscSPs/collectibles_market/internal/middleware"
	"github.com/SscSPs/collectibles_market/internal/utils"
	"github.com/gin-gonic/gin"
)

// marketHandler handles HTTP requests that change item ownership or listings.
type marketHandler struct {
	marketService  portssvc.MarketSvcFacade
	catalogService portssvc.CatalogReaderSvc
}

func newMarketHandler(ms portssvc.MarketSvcFacade, cs portssvc.CatalogReaderSvc) *marketHandler {
	return &marketHandler{marketService: ms, catalogService: cs}
}

// registerMarketRoutes registers series and item routes.
func registerMarketRoutes(rg *gin.RouterGroup, ms portssvc.MarketSvcFacade, cs portssvc.CatalogReaderSvc) {
	h := newMarketHandler(ms, cs)

	series := rg.Group("/series")
	{
		series.GET("/:id", h.getSeries)
		series.POST("/:id/mint", h.mint)
		series.POST("/:id/items/:number/buy", h.buyByNumber)
	}

	items := rg.Group("/items")
	{
		items.GET("/:id", h.getItem)
		items.POST("/:id/buy", h.buy)
		items.POST("/:id/list", h.list)
		items.POST("/:id/delist", h.delist)
		items.POST("/:id/transfer", h.transfer)
	}
}

// getSeries godoc
// @Summary Get a series
// @Tags series
// @Produce  json
// @Param   id path string true "Series ID"
// @Success 200 {object} dto.SeriesResponse
// @Failure 404 {object} map[string]string "Series not found"
// @Security BearerAuth
// @Router /series/{id} [get]
func (h *marketHandler) getSeries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	series, err := h.catalogService.GetSeries(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve series")
		return
	}
	c.JSON(http.StatusOK, dto.ToSeriesResponse(series))
}

// getItem godoc
// @Summary Get an item
// @Tags items
// @Produce  json
// @Param   id path string true "Item ID"
// @Success 200 {object} dto.ItemResponse
// @Failure 404 {object} map[string]string "Item not found"
// @Security BearerAuth
// @Router /items/{id} [get]
func (h *marketHandler) getItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	item, err := h.catalogService.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve item")
		return
	}
	c.JSON(http.StatusOK, dto.ToItemResponse(item))
}

// mint godoc
// @Summary Mint a random item of a series
// @Description Debits the series price and assigns a random unassigned mint number to the caller
// @Tags series
// @Produce  json
// @Param   id path string true "Series ID"
// @Success 201 {object} dto.PurchaseResponse
// @Failure 402 {object} map[string]string "Insufficient funds"
// @Failure 409 {object} map[string]string "Sold out"
// @Failure 422 {object} map[string]string "Series inactive"
// @Security BearerAuth
// @Router /series/{id}/mint [post]
func (h *marketHandler) mint(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	buyerID, ok := callerID(c, logger)
	if !ok {
		return
	}
	seriesID := c.Param("id")

	purchase, err := h.marketService.Mint(c.Request.Context(), seriesID, buyerID)
	if err != nil {
		respondError(c, logger, err, "Failed to mint item")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPurchaseResponse(purchase))
}

// buyByNumber godoc
// @Summary Buy a specific mint number
// @Description Mints the number if unassigned, otherwise buys it if it is listed
// @Tags series
// @Produce  json
// @Param   id path string true "Series ID"
// @Param   number path int true "Mint number"
// @Success 201 {object} dto.PurchaseResponse
// @Failure 400 {object} map[string]string "Invalid mint number"
// @Failure 422 {object} map[string]string "Owned and not for sale"
// @Security BearerAuth
// @Router /series/{id}/items/{number}/buy [post]
func (h *marketHandler) buyByNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	buyerID, ok := callerID(c, logger)
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		logger.Warn("Invalid mint number", slog.String("number", c.Param("number")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mint number"})
		return
	}

	purchase, err := h.marketService.BuyByNumber(c.Request.Context(), c.Param("id"), number, buyerID)
	if err != nil {
		respondError(c, logger, err, "Failed to buy item")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPurchaseResponse(purchase))
}

// buy godoc
// @Summary Buy a listed item
// @Tags items
// @Produce  json
// @Param   id path string true "Item ID"
// @Success 201 {object} dto.PurchaseResponse
// @Failure 402 {object} map[string]string "Insufficient funds"
// @Failure 422 {object} map[string]string "Item not listed"
// @Security BearerAuth
// @Router /items/{id}/buy [post]
func (h *marketHandler) buy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	buyerID, ok := callerID(c, logger)
	if !ok {
		return
	}

	purchase, err := h.marketService.Buy(c.Request.Context(), c.Param("id"), buyerID)
	if err != nil {
		respondError(c, logger, err, "Failed to buy item")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPurchaseResponse(purchase))
}

// list godoc
// @Summary List an owned item for sale
// @Tags items
// @Accept  json
// @Produce  json
// @Param   id path string true "Item ID"
// @Param   listing body dto.ListItemRequest true "Price in TON"
// @Success 200 {object} dto.ItemResponse
// @Failure 400 {object} map[string]string "Invalid price"
// @Failure 403 {object} map[string]string "Not the owner"
// @Security BearerAuth
// @Router /items/{id}/list [post]
func (h *marketHandler) list(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID, ok := callerID(c, logger)
	if !ok {
		return
	}
	var req dto.ListItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for List", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	price, err := utils.ToNano(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.marketService.List(c.Request.Context(), c.Param("id"), ownerID, price)
	if err != nil {
		respondError(c, logger, err, "Failed to list item")
		return
	}
	c.JSON(http.StatusOK, dto.ToItemResponse(item))
}

// delist godoc
// @Summary Remove an item from sale
// @Tags items
// @Produce  json
// @Param   id path string true "Item ID"
// @Success 200 {object} dto.ItemResponse
// @Failure 403 {object} map[string]string "Not the owner"
// @Security BearerAuth
// @Router /items/{id}/delist [post]
func (h *marketHandler) delist(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID, ok := callerID(c, logger)
	if !ok {
		return
	}

	item, err := h.marketService.Delist(c.Request.Context(), c.Param("id"), ownerID)
	if err != nil {
		respondError(c, logger, err, "Failed to delist item")
		return
	}
	c.JSON(http.StatusOK, dto.ToItemResponse(item))
}

// transfer godoc
// @Summary Gift an item to another user
// @Tags items
// @Accept  json
// @Produce  json
// @Param   id path string true "Item ID"
// @Param   transfer body dto.TransferItemRequest true "Recipient external ID"
// @Success 200 {object} dto.ItemResponse
// @Failure 403 {object} map[string]string "Not the owner"
// @Failure 404 {object} map[string]string "Recipient not found"
// @Failure 422 {object} map[string]string "Item is listed"
// @Security BearerAuth
// @Router /items/{id}/transfer [post]
func (h *marketHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ownerID, ok := callerID(c, logger)
	if !ok {
		return
	}
	var req dto.TransferItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	item, err := h.marketService.Transfer(c.Request.Context(), c.Param("id"), ownerID, req.RecipientID)
	if err != nil {
		respondError(c, logger, err, "Failed to transfer item")
		return
	}
	logger.Info("Item transferred", slog.String("item_id", item.ItemID))
	c.JSON(http.StatusOK, dto.ToItemResponse(item))
}
