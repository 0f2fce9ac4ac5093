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

// accountHandler serves the caller's own account and funds movements.
type accountHandler struct {
	accountService    portssvc.AccountReaderSvc
	withdrawalService portssvc.WithdrawalSvc
}

func registerAccountRoutes(rg *gin.RouterGroup, as portssvc.AccountReaderSvc, ws portssvc.WithdrawalSvc) {
	h := &accountHandler{accountService: as, withdrawalService: ws}

	me := rg.Group("/me")
	{
		me.GET("", h.getMe)
		me.GET("/ledger", h.listLedger)
	}
	rg.POST("/withdrawals", h.withdraw)
}

// getMe godoc
// @Summary Get the caller's account
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.AccountResponse
// @Security BearerAuth
// @Router /me [get]
func (h *accountHandler) getMe(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := callerID(c, logger)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listLedger godoc
// @Summary List the caller's ledger entries
// @Description Newest first, keyset paginated
// @Tags accounts
// @Produce  json
// @Param   limit query int false "Page size (max 100)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListLedgerEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Security BearerAuth
// @Router /me/ledger [get]
func (h *accountHandler) listLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := callerID(c, logger)
	if !ok {
		return
	}
	var params dto.ListLedgerEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListLedgerEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	entries, next, err := h.accountService.ListLedgerEntries(c.Request.Context(), accountID, params.Limit, params.NextToken)
	if err != nil {
		respondError(c, logger, err, "Failed to list ledger entries")
		return
	}
	c.JSON(http.StatusOK, dto.ToListLedgerEntriesResponse(entries, next))
}

// withdraw godoc
// @Summary Withdraw to an external wallet
// @Description Debits the balance and dispatches the payment; a failed dispatch is refunded
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   withdrawal body dto.WithdrawRequest true "Destination and amount in TON"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 400 {object} map[string]string "Invalid destination or amount"
// @Failure 402 {object} map[string]string "Insufficient funds"
// @Failure 503 {object} map[string]string "Dispatcher unavailable, funds refunded"
// @Security BearerAuth
// @Router /withdrawals [post]
func (h *accountHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID, ok := callerID(c, logger)
	if !ok {
		return
	}
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Withdraw", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	amount, err := utils.ToNano(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.withdrawalService.Withdraw(c.Request.Context(), accountID, req.Destination, amount)
	if err != nil {
		respondError(c, logger, err, "Failed to withdraw")
		return
	}
	c.JSON(http.StatusCreated, dto.ToLedgerEntryResponse(*entry))
}
