package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/collectibles_market/internal/core/ports/services"
	"github.com/SscSPs/collectibles_market/internal/dto"
	"github.com/SscSPs/collectibles_market/internal/middleware"
	"github.com/gin-gonic/gin"
)

type presaleHandler struct {
	presaleService portssvc.PresaleSvcFacade
	catalogService portssvc.CatalogReaderSvc
}

func registerPresaleRoutes(rg *gin.RouterGroup, ps portssvc.PresaleSvcFacade, cs portssvc.CatalogReaderSvc) {
	h := &presaleHandler{presaleService: ps, catalogService: cs}

	presales := rg.Group("/presales")
	{
		presales.GET("/:id", h.getPresale)
		presales.POST("/:id/pledges", h.pledge)
		presales.POST("/:id/draw", h.draw)
	}
}

// getPresale godoc
// @Summary Get a presale
// @Tags presales
// @Produce  json
// @Param   id path string true "Presale ID"
// @Success 200 {object} dto.PresaleResponse
// @Failure 404 {object} map[string]string "Presale not found"
// @Security BearerAuth
// @Router /presales/{id} [get]
func (h *presaleHandler) getPresale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	presale, err := h.catalogService.GetPresale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve presale")
		return
	}
	c.JSON(http.StatusOK, dto.ToPresaleResponse(presale))
}

// pledge godoc
// @Summary Buy raffle tickets
// @Description Locks tickets times the ticket price until the draw
// @Tags presales
// @Accept  json
// @Produce  json
// @Param   id path string true "Presale ID"
// @Param   pledge body dto.PledgeRequest true "Ticket count"
// @Success 201 {object} dto.PledgeResponse
// @Failure 400 {object} map[string]string "Over the per-user cap"
// @Failure 402 {object} map[string]string "Insufficient funds"
// @Failure 422 {object} map[string]string "Presale not open"
// @Security BearerAuth
// @Router /presales/{id}/pledges [post]
func (h *presaleHandler) pledge(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := callerID(c, logger)
	if !ok {
		return
	}
	var req dto.PledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Pledge", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	pledge, err := h.presaleService.Pledge(c.Request.Context(), c.Param("id"), accountID, req.Tickets)
	if err != nil {
		respondError(c, logger, err, "Failed to pledge")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPledgeResponse(pledge))
}

// draw godoc
// @Summary Run the raffle draw
// @Description Admin only. Resolves every pending pledge once the presale has ended
// @Tags presales
// @Produce  json
// @Param   id path string true "Presale ID"
// @Success 200 {object} dto.DrawResponse
// @Failure 403 {object} map[string]string "Not an admin"
// @Failure 409 {object} map[string]string "Already drawn"
// @Failure 422 {object} map[string]string "Presale still running"
// @Security BearerAuth
// @Router /presales/{id}/draw [post]
func (h *presaleHandler) draw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adminID, ok := callerID(c, logger)
	if !ok {
		return
	}

	result, err := h.presaleService.Draw(c.Request.Context(), c.Param("id"), adminID)
	if err != nil {
		respondError(c, logger, err, "Failed to draw presale")
		return
	}
	logger.Info("Presale drawn", slog.String("presale_id", result.PresaleID), slog.Int("win_limit", result.WinLimit))
	c.JSON(http.StatusOK, dto.ToDrawResponse(result))
}
