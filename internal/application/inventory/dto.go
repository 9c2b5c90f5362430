package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto/backend/internal/domain/inventory"
)

// IngredientResponse represents an ingredient in API responses
type IngredientResponse struct {
	ID               uuid.UUID        `json:"id"`
	OrganizationID   uuid.UUID        `json:"organization_id"`
	Name             string           `json:"name"`
	Unit             string           `json:"unit"`
	Active           bool             `json:"active"`
	TotalStock       decimal.Decimal  `json:"total_stock"`
	AverageUnitCost  *decimal.Decimal `json:"average_unit_cost"`
	FIFOUnitCost     *decimal.Decimal `json:"fifo_unit_cost"`
	ReorderThreshold *decimal.Decimal `json:"reorder_threshold"`
	BelowThreshold   bool             `json:"below_threshold"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	Version          int              `json:"version"`
}

// ToIngredientResponse maps a domain ingredient to its response form
func ToIngredientResponse(ing *inventory.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:               ing.ID,
		OrganizationID:   ing.OrganizationID,
		Name:             ing.Name,
		Unit:             ing.Unit,
		Active:           ing.Active,
		TotalStock:       ing.TotalStock,
		AverageUnitCost:  ing.AverageUnitCost,
		FIFOUnitCost:     ing.FIFOUnitCost,
		ReorderThreshold: ing.ReorderThreshold,
		BelowThreshold:   ing.IsBelowReorderThreshold(),
		CreatedAt:        ing.CreatedAt,
		UpdatedAt:        ing.UpdatedAt,
		Version:          ing.Version,
	}
}

// ToIngredientResponses maps a slice of ingredients
func ToIngredientResponses(items []inventory.Ingredient) []IngredientResponse {
	responses := make([]IngredientResponse, len(items))
	for i := range items {
		responses[i] = ToIngredientResponse(&items[i])
	}
	return responses
}

// BatchResponse represents a stock batch in API responses
type BatchResponse struct {
	ID           uuid.UUID       `json:"id"`
	IngredientID uuid.UUID       `json:"ingredient_id"`
	RemainingQty decimal.Decimal `json:"remaining_qty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	ReceiptRef   string          `json:"receipt_ref,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	BranchID     *uuid.UUID      `json:"branch_id,omitempty"`
	Closed       bool            `json:"closed"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToBatchResponse maps a domain batch to its response form
func ToBatchResponse(b *inventory.IngredientBatch) BatchResponse {
	return BatchResponse{
		ID:           b.ID,
		IngredientID: b.IngredientID,
		RemainingQty: b.RemainingQty,
		UnitCost:     b.UnitCost,
		TotalCost:    b.TotalCost,
		ReceiptRef:   b.ReceiptRef,
		ExpiryDate:   b.ExpiryDate,
		BranchID:     b.BranchID,
		Closed:       b.Closed,
		CreatedAt:    b.CreatedAt,
	}
}

// ToBatchResponses maps a slice of batches
func ToBatchResponses(batches []inventory.IngredientBatch) []BatchResponse {
	responses := make([]BatchResponse, len(batches))
	for i := range batches {
		responses[i] = ToBatchResponse(&batches[i])
	}
	return responses
}

// StockEntryResponse represents a stock movement audit record
type StockEntryResponse struct {
	ID           uuid.UUID       `json:"id"`
	IngredientID uuid.UUID       `json:"ingredient_id"`
	EntryType    string          `json:"entry_type"`
	BatchID      *uuid.UUID      `json:"batch_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	ReceiptRef   string          `json:"receipt_ref,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	BranchID     *uuid.UUID      `json:"branch_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToStockEntryResponse maps a domain stock entry to its response form
func ToStockEntryResponse(e *inventory.StockEntry) StockEntryResponse {
	return StockEntryResponse{
		ID:           e.ID,
		IngredientID: e.IngredientID,
		EntryType:    e.EntryType.String(),
		BatchID:      e.BatchID,
		Quantity:     e.Quantity,
		UnitCost:     e.UnitCost,
		TotalCost:    e.TotalCost,
		ReceiptRef:   e.ReceiptRef,
		Reason:       e.Reason,
		BranchID:     e.BranchID,
		CreatedAt:    e.CreatedAt,
	}
}

// ToStockEntryResponses maps a slice of stock entries
func ToStockEntryResponses(entries []inventory.StockEntry) []StockEntryResponse {
	responses := make([]StockEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToStockEntryResponse(&entries[i])
	}
	return responses
}

// CreateIngredientRequest represents a request to create an ingredient
type CreateIngredientRequest struct {
	Name             string           `json:"name" binding:"required,min=1,max=255"`
	Unit             string           `json:"unit" binding:"required,min=1,max=32"`
	ReorderThreshold *decimal.Decimal `json:"reorder_threshold"`
}

// UpdateIngredientRequest represents a request to update an ingredient.
// Nil fields are left untouched; ClearReorderThreshold removes the threshold.
type UpdateIngredientRequest struct {
	Name                  *string          `json:"name" binding:"omitempty,min=1,max=255"`
	ReorderThreshold      *decimal.Decimal `json:"reorder_threshold"`
	ClearReorderThreshold bool             `json:"clear_reorder_threshold"`
}

// IngredientListFilter represents filter options for the ingredient list
type IngredientListFilter struct {
	Search         string `form:"search"`
	ActiveOnly     bool   `form:"active_only"`
	BelowThreshold bool   `form:"below_threshold"`
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy        string `form:"order_by"`
	OrderDir       string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RecordStockEntryRequest represents a request to receive goods into a new batch
type RecordStockEntryRequest struct {
	IngredientID uuid.UUID       `json:"ingredient_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	TotalCost    decimal.Decimal `json:"total_cost" binding:"required"`
	ReceiptRef   string          `json:"receipt_ref" binding:"omitempty,max=255"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
	BranchID     *uuid.UUID      `json:"branch_id"`
}

// RecordStockEntryResponse is returned after a successful purchase entry
type RecordStockEntryResponse struct {
	Entry      StockEntryResponse `json:"entry"`
	Batch      BatchResponse      `json:"batch"`
	Ingredient IngredientResponse `json:"ingredient"`
}

// DeductStockRequest represents a request to consume stock FIFO
type DeductStockRequest struct {
	IngredientID uuid.UUID       `json:"ingredient_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	OrderID      *uuid.UUID      `json:"order_id"`
	RecipeID     *uuid.UUID      `json:"recipe_id"`
	Reason       string          `json:"reason" binding:"omitempty,max=255"`
}

// DeductionSliceResponse is one batch-level consumption in a deduction result
type DeductionSliceResponse struct {
	BatchID  uuid.UUID       `json:"batch_id"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	LineCost decimal.Decimal `json:"line_cost"`
}

// DeductStockResponse is returned after a successful FIFO deduction
type DeductStockResponse struct {
	IngredientID  uuid.UUID                `json:"ingredient_id"`
	TotalQuantity decimal.Decimal          `json:"total_quantity"`
	TotalCost     decimal.Decimal          `json:"total_cost"`
	Slices        []DeductionSliceResponse `json:"slices"`
	Ingredient    IngredientResponse       `json:"ingredient"`
}

// AdjustStockRequest represents a manual correction to total stock
type AdjustStockRequest struct {
	IngredientID uuid.UUID       `json:"ingredient_id" binding:"required"`
	Delta        decimal.Decimal `json:"delta" binding:"required"`
	Reason       string          `json:"reason" binding:"required,min=1,max=255"`
	BranchID     *uuid.UUID      `json:"branch_id"`
}

// AdjustStockResponse is returned after a successful adjustment
type AdjustStockResponse struct {
	Entry      StockEntryResponse `json:"entry"`
	Ingredient IngredientResponse `json:"ingredient"`
}

// LowStockAlertResponse represents an ingredient at or below its threshold
type LowStockAlertResponse struct {
	IngredientID     uuid.UUID       `json:"ingredient_id"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	TotalStock       decimal.Decimal `json:"total_stock"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
}
