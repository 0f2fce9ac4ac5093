package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/dto"
	"github.com/SscSPs/collectibles_market/internal/middleware"
	"github.com/gin-gonic/gin"
)

// adminHandler exposes catalog creation. Admin rights are enforced by the catalog service.
type adminHandler struct {
	catalogService portssvc.CatalogWriterSvc
}

func registerAdminRoutes(rg *gin.RouterGroup, cs portssvc.CatalogWriterSvc) {
	h := &adminHandler{catalogService: cs}

	admin := rg.Group("/admin")
	{
		admin.POST("/series", h.createSeries)
		admin.POST("/presales", h.createPresale)
	}
}

// createSeries godoc
// @Summary Create a series
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   series body dto.CreateSeriesRequest true "Series definition, price in TON"
// @Success 201 {object} dto.SeriesResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Not an admin"
// @Failure 409 {object} map[string]string "Series already exists"
// @Security BearerAuth
// @Router /admin/series [post]
func (h *adminHandler) createSeries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adminID, ok := callerID(c, logger)
	if !ok {
		return
	}
	var req dto.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSeries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	series, err := h.catalogService.CreateSeries(c.Request.Context(), adminID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create series")
		return
	}
	logger.Info("Series created", slog.String("series_id", series.SeriesID))
	c.JSON(http.StatusCreated, dto.ToSeriesResponse(series))
}

// createPresale godoc
// @Summary Create a presale raffle over a series
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   presale body dto.CreatePresaleRequest true "Presale definition, ticket price in TON"
// @Success 201 {object} dto.PresaleResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Not an admin"
// @Security BearerAuth
// @Router /admin/presales [post]
func (h *adminHandler) createPresale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adminID, ok := callerID(c, logger)
	if !ok {
		return
	}
	var req dto.CreatePresaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePresale", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	presale, err := h.catalogService.CreatePresale(c.Request.Context(), adminID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create presale")
		return
	}
	logger.Info("Presale created", slog.String("presale_id", presale.PresaleID))
	c.JSON(http.StatusCreated, dto.ToPresaleResponse(presale))
}
