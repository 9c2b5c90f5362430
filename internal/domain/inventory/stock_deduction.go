package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto/backend/internal/domain/shared"
)

// StockDeduction is the immutable audit record of one batch-level consumption
// produced by a FIFO deduction. A single logical deduction request writes one
// row per batch it touched. UnitCost is the batch's own cost, never a blended
// figure. Append-only.
type StockDeduction struct {
	shared.BaseEntity
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OrderID        *uuid.UUID      `gorm:"type:uuid;index"`
	RecipeID       *uuid.UUID      `gorm:"type:uuid;index"`
	Reason         string          `gorm:"size:255"`
}

// TableName returns the table name for GORM
func (StockDeduction) TableName() string {
	return "stock_deductions"
}

// DeductionRef carries the optional provenance of a deduction request
type DeductionRef struct {
	OrderID  *uuid.UUID
	RecipeID *uuid.UUID
	Reason   string
}

// NewStockDeduction records one slice of a FIFO deduction
func NewStockDeduction(
	organizationID, ingredientID uuid.UUID,
	slice DeductionSlice,
	ref DeductionRef,
) (*StockDeduction, error) {
	if slice.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}
	return &StockDeduction{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		IngredientID:   ingredientID,
		BatchID:        slice.BatchID,
		Quantity:       slice.Quantity,
		UnitCost:       slice.UnitCost,
		TotalCost:      slice.LineCost,
		OrderID:        ref.OrderID,
		RecipeID:       ref.RecipeID,
		Reason:         ref.Reason,
	}, nil
}
