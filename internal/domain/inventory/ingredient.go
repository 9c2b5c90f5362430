package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto/backend/internal/domain/shared"
)

// Ingredient is the aggregate root for inventory operations. It carries the
// denormalized stock summary (total stock, average cost, FIFO cost) that the
// costing engine keeps consistent with the batch ledger: TotalStock always
// equals the sum of remaining quantities of its open batches. The summary is
// cached for O(1) reads and is only mutated inside ledger transactions.
type Ingredient struct {
	shared.OrgAggregateRoot
	Name   string `gorm:"size:255;not null;index"`
	Unit   string `gorm:"size:32;not null"`
	Active bool   `gorm:"not null;default:true"`

	TotalStock decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	// AverageUnitCost is the weighted-average unit cost across all stock ever
	// blended in. Nil until the first purchase.
	AverageUnitCost *decimal.Decimal `gorm:"type:decimal(18,4)"`
	// FIFOUnitCost is the unit cost of the oldest open batch. Nil when no open
	// batches remain.
	FIFOUnitCost *decimal.Decimal `gorm:"type:decimal(18,4)"`
	// ReorderThreshold triggers low-stock alerts when TotalStock falls to or
	// below it. Nil disables alerting for this ingredient.
	ReorderThreshold *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (Ingredient) TableName() string {
	return "ingredients"
}

// NewIngredient creates a new ingredient with zero stock
func NewIngredient(organizationID uuid.UUID, name, unit string) (*Ingredient, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Ingredient name cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit of measure cannot be empty")
	}
	return &Ingredient{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		Name:             name,
		Unit:             unit,
		Active:           true,
		TotalStock:       decimal.Zero,
	}, nil
}

// ApplyPurchase blends a purchase into the aggregate: increases TotalStock and
// recalculates the weighted-average unit cost. The first purchase sets the
// average to the batch unit cost since there is no prior stock to blend.
// FIFOUnitCost is NOT touched here; the caller recomputes it from the oldest
// open batch after the ledger write (see RefreshFIFOUnitCost).
func (i *Ingredient) ApplyPurchase(quantity, totalCost decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if totalCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Total cost cannot be negative")
	}

	newAverage := WeightedAverageCost(i.TotalStock, i.AverageUnitCost, quantity, totalCost)
	i.AverageUnitCost = &newAverage
	i.TotalStock = i.TotalStock.Add(quantity)
	i.touch()
	return nil
}

// ApplyDeduction decreases TotalStock after a successful FIFO walk. The caller
// must have verified batch-level availability inside the same transaction.
func (i *Ingredient) ApplyDeduction(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if i.TotalStock.LessThan(quantity) {
		return shared.ErrInsufficientStock
	}
	i.TotalStock = i.TotalStock.Sub(quantity)
	i.touch()
	return nil
}

// ApplyAdjustment applies a signed manual correction to TotalStock. It
// deliberately does not touch batch remainders, so adjustments can drift the
// aggregate away from the batch ledger; that is an accepted property of the
// manual-adjustment escape hatch, not something callers should reconcile.
// Returns the unit cost used for the audit entry: FIFO cost, falling back to
// average cost, falling back to zero.
func (i *Ingredient) ApplyAdjustment(delta decimal.Decimal) (decimal.Decimal, error) {
	if delta.IsZero() {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}
	newStock := i.TotalStock.Add(delta)
	if newStock.IsNegative() {
		return decimal.Zero, shared.ErrInsufficientStock
	}
	i.TotalStock = newStock
	i.touch()
	return i.AuditUnitCost(), nil
}

// AuditUnitCost returns the unit cost used to value adjustments:
// FIFOUnitCost ?? AverageUnitCost ?? 0.
func (i *Ingredient) AuditUnitCost() decimal.Decimal {
	if i.FIFOUnitCost != nil {
		return *i.FIFOUnitCost
	}
	if i.AverageUnitCost != nil {
		return *i.AverageUnitCost
	}
	return decimal.Zero
}

// RefreshFIFOUnitCost recomputes FIFOUnitCost from the oldest surviving open
// batch. Passing the full open-batch set (any order) is safe; nil clears the
// cost when no open batches remain.
func (i *Ingredient) RefreshFIFOUnitCost(openBatches []IngredientBatch) {
	i.FIFOUnitCost = FIFOUnitCostOf(openBatches)
	i.touch()
}

// SetReorderThreshold sets the low-stock alert threshold
func (i *Ingredient) SetReorderThreshold(threshold decimal.Decimal) error {
	if threshold.IsNegative() {
		return shared.NewDomainError("INVALID_THRESHOLD", "Reorder threshold cannot be negative")
	}
	i.ReorderThreshold = &threshold
	i.touch()
	return nil
}

// ClearReorderThreshold disables low-stock alerting for this ingredient
func (i *Ingredient) ClearReorderThreshold() {
	i.ReorderThreshold = nil
	i.touch()
}

// IsBelowReorderThreshold returns true when alerting is enabled and the stock
// level has reached the threshold
func (i *Ingredient) IsBelowReorderThreshold() bool {
	return i.ReorderThreshold != nil && i.TotalStock.LessThanOrEqual(*i.ReorderThreshold)
}

// Rename updates the display name
func (i *Ingredient) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Ingredient name cannot be empty")
	}
	i.Name = name
	i.touch()
	return nil
}

// Deactivate marks the ingredient inactive; inactive ingredients are excluded
// from low-stock alerts but keep their ledger history
func (i *Ingredient) Deactivate() {
	i.Active = false
	i.touch()
}

func (i *Ingredient) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}
