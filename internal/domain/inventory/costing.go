package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CostPrecision is the number of decimal places kept for unit costs and line
// costs. All costing math runs on fixed-point decimals; binary floating point
// would let rounding error accumulate across deductions and drift the
// aggregate away from the ledger.
const CostPrecision = 4

// WeightedAverageCost blends a purchase into the running weighted-average unit
// cost: (oldStock*oldAverage + purchaseTotalCost) / (oldStock + quantity).
// With no prior stock (or no prior average) the result is the purchase's own
// unit cost.
func WeightedAverageCost(oldStock decimal.Decimal, oldAverage *decimal.Decimal, quantity, totalCost decimal.Decimal) decimal.Decimal {
	if oldStock.LessThanOrEqual(decimal.Zero) || oldAverage == nil {
		return unitCostOf(quantity, totalCost)
	}
	newStock := oldStock.Add(quantity)
	blended := oldStock.Mul(*oldAverage).Add(totalCost)
	return blended.Div(newStock).Round(CostPrecision)
}

// FIFOUnitCostOf returns the unit cost of the oldest open batch, or nil when
// no open batches remain. The input may be in any order and may contain
// closed batches.
func FIFOUnitCostOf(batches []IngredientBatch) *decimal.Decimal {
	var oldest *IngredientBatch
	for idx := range batches {
		b := &batches[idx]
		if !b.IsOpen() {
			continue
		}
		if oldest == nil || batchBefore(b, oldest) {
			oldest = b
		}
	}
	if oldest == nil {
		return nil
	}
	cost := oldest.UnitCost
	return &cost
}

// SortBatchesFIFO orders batches oldest-first by creation time, tie-broken by
// batch ID so the walk is reproducible even when timestamps collide.
func SortBatchesFIFO(batches []IngredientBatch) {
	sort.Slice(batches, func(i, j int) bool {
		return batchBefore(&batches[i], &batches[j])
	})
}

func batchBefore(a, b *IngredientBatch) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

// unitCostOf derives a per-unit cost from a total, rounded to CostPrecision.
func unitCostOf(quantity, totalCost decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return totalCost.Div(quantity).Round(CostPrecision)
}

// UnitCostOf is the exported form used by the stock-entry flow.
func UnitCostOf(quantity, totalCost decimal.Decimal) decimal.Decimal {
	return unitCostOf(quantity, totalCost)
}
