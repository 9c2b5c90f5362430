package handler

import (
	"github.com/gin-gonic/gin"

	inventoryapp "github.com/resto/backend/internal/application/inventory"
)

// StockHandler handles the ledger mutation endpoints: receiving goods,
// FIFO deductions, and manual adjustments.
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// RecordEntry receives goods into a new batch. The response carries the audit
// entry, the new batch, and the ingredient's refreshed cost fields.
func (h *StockHandler) RecordEntry(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req inventoryapp.RecordStockEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.stockService.RecordStockEntry(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Deduct consumes stock FIFO across open batches. Insufficient stock maps to
// 422 with no partial deduction committed.
func (h *StockHandler) Deduct(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req inventoryapp.DeductStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.stockService.DeductStock(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Adjust applies a signed manual correction to total stock
func (h *StockHandler) Adjust(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.stockService.AdjustStock(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
