package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	inventoryapp "github.com/resto/backend/internal/application/inventory"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/infrastructure/logger"
	"github.com/resto/backend/internal/interfaces/http/dto"
)

// IngredientReadCache serves cached ingredient stock summaries. Misses and
// cache errors both fall through to the database read.
type IngredientReadCache interface {
	GetIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID) ([]byte, bool, error)
	SetIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID, payload []byte) error
}

// IngredientHandler handles ingredient catalog and stock-view endpoints
type IngredientHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
	cache        IngredientReadCache
}

// NewIngredientHandler creates an IngredientHandler. The cache is optional.
func NewIngredientHandler(stockService *inventoryapp.StockService, cache IngredientReadCache) *IngredientHandler {
	return &IngredientHandler{
		stockService: stockService,
		cache:        cache,
	}
}

// Create registers a new ingredient with zero stock
func (h *IngredientHandler) Create(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var req inventoryapp.CreateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ing, err := h.stockService.CreateIngredient(c.Request.Context(), organizationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, ing)
}

// Update applies partial updates to an ingredient's metadata
func (h *IngredientHandler) Update(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ingredient ID format")
		return
	}

	var req inventoryapp.UpdateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ing, err := h.stockService.UpdateIngredient(c.Request.Context(), organizationID, ingredientID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ing)
}

// Deactivate marks an ingredient inactive, keeping its ledger
func (h *IngredientHandler) Deactivate(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ingredient ID format")
		return
	}

	if err := h.stockService.DeactivateIngredient(c.Request.Context(), organizationID, ingredientID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID returns the stock summary for one ingredient. Reads go through the
// cache; mutations invalidate it post-commit, so a hit is at worst one TTL
// stale after a lost invalidation.
func (h *IngredientHandler) GetByID(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ingredient ID format")
		return
	}

	ctx := c.Request.Context()

	if h.cache != nil {
		payload, hit, err := h.cache.GetIngredient(ctx, organizationID, ingredientID)
		if err != nil {
			logger.GetGinLogger(c).Warn("stock cache read failed", zap.Error(err))
		} else if hit {
			var cached inventoryapp.IngredientResponse
			if err := json.Unmarshal(payload, &cached); err == nil {
				h.Success(c, cached)
				return
			}
		}
	}

	ing, err := h.stockService.GetIngredient(ctx, organizationID, ingredientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if h.cache != nil {
		if payload, err := json.Marshal(ing); err == nil {
			if err := h.cache.SetIngredient(ctx, organizationID, ingredientID, payload); err != nil {
				logger.GetGinLogger(c).Warn("stock cache write failed", zap.Error(err))
			}
		}
	}

	h.Success(c, ing)
}

// List returns ingredients with pagination and filters
func (h *IngredientHandler) List(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	var filter inventoryapp.IngredientListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	items, total, err := h.stockService.ListIngredients(c.Request.Context(), organizationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// ListBatches returns the open batches of an ingredient in FIFO order
func (h *IngredientHandler) ListBatches(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ingredient ID format")
		return
	}

	batches, err := h.stockService.ListOpenBatches(c.Request.Context(), organizationID, ingredientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batches)
}

// ListEntries returns the stock movement audit trail for an ingredient
func (h *IngredientHandler) ListEntries(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ingredient ID format")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if listReq.Page <= 0 {
		listReq.Page = 1
	}
	if listReq.PageSize <= 0 {
		listReq.PageSize = 20
	}

	filter := shared.DefaultFilter()
	filter.Page = listReq.Page
	filter.PageSize = listReq.PageSize
	if listReq.OrderBy != "" {
		filter.OrderBy = listReq.OrderBy
	}
	if listReq.OrderDir != "" {
		filter.OrderDir = listReq.OrderDir
	}
	if entryType := c.Query("entry_type"); entryType != "" {
		filter.Filters["entry_type"] = entryType
	}

	entries, total, err := h.stockService.ListStockEntries(c.Request.Context(), organizationID, ingredientID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, listReq.Page, listReq.PageSize)
}

// LowStockAlerts returns active ingredients at or below their reorder threshold
func (h *IngredientHandler) LowStockAlerts(c *gin.Context) {
	organizationID, err := getOrganizationID(c)
	if err != nil {
		h.BadRequest(c, "Invalid organization ID")
		return
	}

	alerts, err := h.stockService.GetLowStockAlerts(c.Request.Context(), organizationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, alerts)
}
