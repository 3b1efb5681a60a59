package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/accubooks/backoffice/internal/core/ports/services"
	"github.com/accubooks/backoffice/internal/dto"
	"github.com/accubooks/backoffice/internal/middleware"
)

// ledgerHandler handles HTTP requests for ledger entries and transfers.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers routes related to ledger entries.
func registerLedgerRoutes(rg *gin.RouterGroup, ls portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ls)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("/:id", h.getEntry)
		entries.PUT("/:id", h.amendEntry)
		entries.DELETE("/:id", h.deleteEntry)
		entries.POST("/:id/reconcile", h.reconcileEntry)
	}

	rg.POST("/transfers", h.createTransfer)
}

// createEntry godoc
// @Summary Record a ledger entry
// @Description Records a monetary movement. Bank entries mutate the account balance atomically; cash entries complete immediately with no account reference
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateEntryRequest true "Entry details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account inactive"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /entries [post]
func (h *ledgerHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, companyID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	entry, err := h.ledgerService.CreateEntry(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// getEntry godoc
// @Summary Get a ledger entry by ID
// @Tags entries
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /entries/{id} [get]
func (h *ledgerHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, companyID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	entry, err := h.ledgerService.GetEntryByID(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// amendEntry godoc
// @Summary Amend a completed entry
// @Description Changes amount, direction or description. The account balance is adjusted by the net difference in one atomic mutation
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   id path string true "Entry ID"
// @Param   changes body dto.AmendEntryRequest true "Fields to amend"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry reconciled or not completed"
// @Failure 422 {object} map[string]string "Insufficient funds for the adjustment"
// @Security BearerAuth
// @Router /entries/{id} [put]
func (h *ledgerHandler) amendEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AmendEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, companyID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	entry, err := h.ledgerService.AmendEntry(c.Request.Context(), companyID, c.Param("id"), req, userID)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// deleteEntry godoc
// @Summary Cancel an entry
// @Description Reverses the entry's balance effect and marks it CANCELLED. The row is kept for the audit trail
// @Tags entries
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.DeletedEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry reconciled or already cancelled"
// @Security BearerAuth
// @Router /entries/{id} [delete]
func (h *ledgerHandler) deleteEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, companyID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	res, err := h.ledgerService.DeleteEntry(c.Request.Context(), companyID, c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// reconcileEntry godoc
// @Summary Reconcile an entry
// @Description Marks an entry as externally confirmed. Reconciled entries can no longer be amended or cancelled
// @Tags entries
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry already reconciled or not completed"
// @Security BearerAuth
// @Router /entries/{id}/reconcile [post]
func (h *ledgerHandler) reconcileEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, companyID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	entry, err := h.ledgerService.ReconcileEntry(c.Request.Context(), companyID, c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// createTransfer godoc
// @Summary Transfer between accounts
// @Description Moves money between two accounts as two linked entries. If the second leg fails the first is reversed, so a half-applied transfer is never visible
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} map[string]string "Invalid input or same-account transfer"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Security BearerAuth
// @Router /transfers [post]
func (h *ledgerHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, companyID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	res, err := h.ledgerService.Transfer(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}
