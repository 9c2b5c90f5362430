package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto/backend/internal/domain/shared"
)

// DeductionSlice is one batch-level consumption produced by the FIFO walk.
// LineCost is always slice quantity times the batch's own unit cost; FIFO
// cost is per-batch, never blended.
type DeductionSlice struct {
	BatchID  uuid.UUID
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
	LineCost decimal.Decimal
}

// DeductionPlan is the complete result of planning a FIFO deduction: the
// ordered slices (oldest batch first), the totals, and which batches drain to
// zero if the plan is applied.
type DeductionPlan struct {
	Slices          []DeductionSlice
	TotalQuantity   decimal.Decimal
	TotalCost       decimal.Decimal
	DrainedBatchIDs []uuid.UUID
	PartialBatchIDs []uuid.UUID
}

// PlanFIFODeduction walks the given batches oldest-first and plans how to
// satisfy the requested quantity. The plan is purely computational: no batch
// is mutated. It fails with shared.ErrInsufficientStock if the open batches
// cannot fully satisfy the request; partial deductions are never planned.
func PlanFIFODeduction(requested decimal.Decimal, batches []IngredientBatch) (*DeductionPlan, error) {
	if requested.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}

	open := make([]IngredientBatch, 0, len(batches))
	for _, b := range batches {
		if b.IsOpen() {
			open = append(open, b)
		}
	}
	SortBatchesFIFO(open)

	plan := &DeductionPlan{
		Slices:          make([]DeductionSlice, 0, len(open)),
		TotalQuantity:   decimal.Zero,
		TotalCost:       decimal.Zero,
		DrainedBatchIDs: make([]uuid.UUID, 0),
		PartialBatchIDs: make([]uuid.UUID, 0),
	}

	remaining := requested
	for _, b := range open {
		if remaining.IsZero() {
			break
		}
		sliceQty := decimal.Min(remaining, b.RemainingQty)
		lineCost := sliceQty.Mul(b.UnitCost).Round(CostPrecision)

		plan.Slices = append(plan.Slices, DeductionSlice{
			BatchID:  b.ID,
			Quantity: sliceQty,
			UnitCost: b.UnitCost,
			LineCost: lineCost,
		})
		plan.TotalQuantity = plan.TotalQuantity.Add(sliceQty)
		plan.TotalCost = plan.TotalCost.Add(lineCost)
		remaining = remaining.Sub(sliceQty)

		if sliceQty.Equal(b.RemainingQty) {
			plan.DrainedBatchIDs = append(plan.DrainedBatchIDs, b.ID)
		} else {
			plan.PartialBatchIDs = append(plan.PartialBatchIDs, b.ID)
		}
	}

	if remaining.GreaterThan(decimal.Zero) {
		return nil, shared.ErrInsufficientStock
	}
	return plan, nil
}
