package inventory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto/backend/internal/domain/shared"
)

// StockEntryType classifies a stock movement audit record
type StockEntryType string

const (
	// StockEntryTypePurchase records goods received into a new batch
	StockEntryTypePurchase StockEntryType = "PURCHASE"
	// StockEntryTypeAdjustment records a manual correction to total stock
	StockEntryTypeAdjustment StockEntryType = "ADJUSTMENT"
)

// IsValid returns true if the entry type is known
func (t StockEntryType) IsValid() bool {
	switch t {
	case StockEntryTypePurchase, StockEntryTypeAdjustment:
		return true
	}
	return false
}

// String returns the string representation
func (t StockEntryType) String() string {
	return string(t)
}

// StockEntry is the immutable audit record of a purchase or manual
// adjustment. Entries are append-only: once written they are never updated
// or deleted. Quantity is signed for adjustments (negative = stock removed).
type StockEntry struct {
	shared.BaseEntity
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	EntryType      StockEntryType  `gorm:"size:16;not null"`
	BatchID        *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceiptRef     string          `gorm:"size:255"`
	Reason         string          `gorm:"size:255"`
	BranchID       *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (StockEntry) TableName() string {
	return "stock_entries"
}

// NewPurchaseEntry records goods received into the given batch
func NewPurchaseEntry(
	organizationID, ingredientID, batchID uuid.UUID,
	quantity, unitCost, totalCost decimal.Decimal,
	receiptRef string,
	branchID *uuid.UUID,
) (*StockEntry, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Purchase quantity must be positive")
	}
	if totalCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Total cost cannot be negative")
	}
	return &StockEntry{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		IngredientID:   ingredientID,
		EntryType:      StockEntryTypePurchase,
		BatchID:        &batchID,
		Quantity:       quantity,
		UnitCost:       unitCost,
		TotalCost:      totalCost,
		ReceiptRef:     receiptRef,
		BranchID:       branchID,
	}, nil
}

// NewAdjustmentEntry records a manual stock correction. The delta is signed;
// the audit total cost is valued at unitCost times the absolute delta. A
// reason is mandatory because adjustments bypass the batch ledger.
func NewAdjustmentEntry(
	organizationID, ingredientID uuid.UUID,
	delta, unitCost decimal.Decimal,
	reason string,
	branchID *uuid.UUID,
) (*StockEntry, error) {
	if delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}
	return &StockEntry{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		IngredientID:   ingredientID,
		EntryType:      StockEntryTypeAdjustment,
		Quantity:       delta,
		UnitCost:       unitCost,
		TotalCost:      unitCost.Mul(delta.Abs()).Round(CostPrecision),
		Reason:         reason,
		BranchID:       branchID,
	}, nil
}
