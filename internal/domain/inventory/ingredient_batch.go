package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto/backend/internal/domain/shared"
)

// IngredientBatch is one discrete stock lot, created by exactly one purchase
// entry. RemainingQty only ever decreases after creation; TotalCost is frozen
// at receipt (initial quantity times unit cost). A batch closes when drained
// and never reopens. Batches are never deleted; CreatedAt defines FIFO order,
// with the batch ID as a deterministic tie-break.
type IngredientBatch struct {
	shared.BaseEntity
	IngredientID uuid.UUID       `gorm:"type:uuid;not null;index:idx_batches_ingredient_open,priority:1"`
	RemainingQty decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceiptRef   string          `gorm:"size:255"`
	ExpiryDate   *time.Time
	BranchID     *uuid.UUID `gorm:"type:uuid;index"`
	Closed       bool       `gorm:"not null;default:false;index:idx_batches_ingredient_open,priority:2"`
}

// TableName returns the table name for GORM
func (IngredientBatch) TableName() string {
	return "ingredient_batches"
}

// NewIngredientBatch creates a batch for a purchase of the given quantity at
// the given unit cost
func NewIngredientBatch(
	ingredientID uuid.UUID,
	quantity, unitCost decimal.Decimal,
	receiptRef string,
	expiryDate *time.Time,
	branchID *uuid.UUID,
) (*IngredientBatch, error) {
	if ingredientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INGREDIENT", "Ingredient ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	return &IngredientBatch{
		BaseEntity:   shared.NewBaseEntity(),
		IngredientID: ingredientID,
		RemainingQty: quantity,
		UnitCost:     unitCost,
		TotalCost:    quantity.Mul(unitCost).Round(CostPrecision),
		ReceiptRef:   receiptRef,
		ExpiryDate:   expiryDate,
		BranchID:     branchID,
	}, nil
}

// Consume removes quantity from the batch, closing it when drained. The
// quantity must not exceed RemainingQty; the FIFO planner guarantees that.
func (b *IngredientBatch) Consume(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Consumed quantity must be positive")
	}
	if b.Closed || quantity.GreaterThan(b.RemainingQty) {
		return shared.ErrInsufficientStock
	}
	b.RemainingQty = b.RemainingQty.Sub(quantity)
	if b.RemainingQty.LessThanOrEqual(decimal.Zero) {
		b.RemainingQty = decimal.Zero
		b.Closed = true
	}
	b.UpdatedAt = time.Now()
	return nil
}

// IsOpen returns true if the batch still holds stock
func (b *IngredientBatch) IsOpen() bool {
	return !b.Closed && b.RemainingQty.GreaterThan(decimal.Zero)
}

// IsExpired returns true if the batch has an expiry date in the past
func (b *IngredientBatch) IsExpired() bool {
	return b.ExpiryDate != nil && b.ExpiryDate.Before(time.Now())
}

// RemainingValue returns remaining quantity times unit cost
func (b *IngredientBatch) RemainingValue() decimal.Decimal {
	return b.RemainingQty.Mul(b.UnitCost)
}
