package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto/backend/internal/domain/shared"
)

// Event types for the inventory ledger
const (
	EventTypeBatchReceived         = "inventory.batch.received"
	EventTypeStockDeducted         = "inventory.stock.deducted"
	EventTypeStockAdjusted         = "inventory.stock.adjusted"
	EventTypeStockBelowThreshold   = "inventory.stock.below_threshold"
	EventTypeIngredientCostChanged = "inventory.ingredient.cost_changed"
)

// AggregateTypeIngredient identifies the ingredient aggregate in events
const AggregateTypeIngredient = "Ingredient"

// BatchReceivedEvent signals that a purchase created a new batch for an
// ingredient. Downstream consumers (job queue, cache) react to it after the
// ledger transaction commits.
type BatchReceivedEvent struct {
	shared.BaseDomainEvent
	IngredientID uuid.UUID       `json:"ingredient_id"`
	BatchID      uuid.UUID       `json:"batch_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalStock   decimal.Decimal `json:"total_stock"`
}

// NewBatchReceivedEvent creates a BatchReceivedEvent
func NewBatchReceivedEvent(ing *Ingredient, batch *IngredientBatch) *BatchReceivedEvent {
	return &BatchReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchReceived, AggregateTypeIngredient, ing.ID, ing.OrganizationID),
		IngredientID:    ing.ID,
		BatchID:         batch.ID,
		Quantity:        batch.RemainingQty,
		UnitCost:        batch.UnitCost,
		TotalStock:      ing.TotalStock,
	}
}

// StockDeductedEvent signals a committed FIFO deduction
type StockDeductedEvent struct {
	shared.BaseDomainEvent
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalStock   decimal.Decimal `json:"total_stock"`
	OrderID      *uuid.UUID      `json:"order_id,omitempty"`
}

// NewStockDeductedEvent creates a StockDeductedEvent
func NewStockDeductedEvent(ing *Ingredient, quantity, totalCost decimal.Decimal, orderID *uuid.UUID) *StockDeductedEvent {
	return &StockDeductedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDeducted, AggregateTypeIngredient, ing.ID, ing.OrganizationID),
		IngredientID:    ing.ID,
		Quantity:        quantity,
		TotalCost:       totalCost,
		TotalStock:      ing.TotalStock,
		OrderID:         orderID,
	}
}

// StockAdjustedEvent signals a committed manual adjustment
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Delta        decimal.Decimal `json:"delta"`
	TotalStock   decimal.Decimal `json:"total_stock"`
	Reason       string          `json:"reason"`
}

// NewStockAdjustedEvent creates a StockAdjustedEvent
func NewStockAdjustedEvent(ing *Ingredient, delta decimal.Decimal, reason string) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeIngredient, ing.ID, ing.OrganizationID),
		IngredientID:    ing.ID,
		Delta:           delta,
		TotalStock:      ing.TotalStock,
		Reason:          reason,
	}
}

// StockBelowThresholdEvent signals that stock fell to or below the reorder
// threshold after a mutation
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	IngredientID     uuid.UUID       `json:"ingredient_id"`
	IngredientName   string          `json:"ingredient_name"`
	TotalStock       decimal.Decimal `json:"total_stock"`
	ReorderThreshold decimal.Decimal `json:"reorder_threshold"`
	Unit             string          `json:"unit"`
}

// NewStockBelowThresholdEvent creates a StockBelowThresholdEvent; the caller
// must have checked IsBelowReorderThreshold first
func NewStockBelowThresholdEvent(ing *Ingredient) *StockBelowThresholdEvent {
	threshold := decimal.Zero
	if ing.ReorderThreshold != nil {
		threshold = *ing.ReorderThreshold
	}
	return &StockBelowThresholdEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeIngredient, ing.ID, ing.OrganizationID),
		IngredientID:     ing.ID,
		IngredientName:   ing.Name,
		TotalStock:       ing.TotalStock,
		ReorderThreshold: threshold,
		Unit:             ing.Unit,
	}
}

// IngredientCostChangedEvent signals that the weighted-average unit cost
// moved. Recipe costing listens to it to re-price dependent recipes and menu
// items.
type IngredientCostChangedEvent struct {
	shared.BaseDomainEvent
	IngredientID uuid.UUID        `json:"ingredient_id"`
	OldCost      *decimal.Decimal `json:"old_cost,omitempty"`
	NewCost      *decimal.Decimal `json:"new_cost,omitempty"`
}

// NewIngredientCostChangedEvent creates an IngredientCostChangedEvent
func NewIngredientCostChangedEvent(ing *Ingredient, oldCost, newCost *decimal.Decimal) *IngredientCostChangedEvent {
	return &IngredientCostChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIngredientCostChanged, AggregateTypeIngredient, ing.ID, ing.OrganizationID),
		IngredientID:    ing.ID,
		OldCost:         oldCost,
		NewCost:         newCost,
	}
}
