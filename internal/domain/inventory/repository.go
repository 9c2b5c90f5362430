package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/resto/backend/internal/domain/shared"
)

// IngredientRepository defines persistence for the ingredient aggregate.
// Implementations must return shared.ErrNotFound for missing rows.
type IngredientRepository interface {
	FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*Ingredient, error)
	// FindByIDForOrgLocked loads the ingredient row under a row-level write
	// lock (SELECT ... FOR UPDATE). Inside a ledger transaction this
	// serializes concurrent mutations per ingredient, which is what keeps two
	// FIFO deductions from decrementing the same batch remainder from a stale
	// snapshot.
	FindByIDForOrgLocked(ctx context.Context, organizationID, id uuid.UUID) (*Ingredient, error)
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]Ingredient, error)
	CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error)
	// FindBelowReorderThreshold returns active ingredients whose total stock
	// is at or below their non-null reorder threshold
	FindBelowReorderThreshold(ctx context.Context, organizationID uuid.UUID) ([]Ingredient, error)
	Create(ctx context.Context, ing *Ingredient) error
	Save(ctx context.Context, ing *Ingredient) error
	// SaveWithLock persists the aggregate using optimistic version checking;
	// returns a CONCURRENCY_CONFLICT domain error on version mismatch
	SaveWithLock(ctx context.Context, ing *Ingredient) error
}

// IngredientBatchRepository defines persistence for the batch ledger.
// Batches are append-then-decrement: no deletes, no quantity increases.
type IngredientBatchRepository interface {
	Create(ctx context.Context, batch *IngredientBatch) error
	FindByID(ctx context.Context, id uuid.UUID) (*IngredientBatch, error)
	// FindOpenByIngredient returns open batches ordered oldest-first
	// (created_at, then id)
	FindOpenByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]IngredientBatch, error)
	// FindOpenByIngredientLocked is FindOpenByIngredient with row-level write
	// locks, for use inside the FIFO deduction transaction
	FindOpenByIngredientLocked(ctx context.Context, ingredientID uuid.UUID) ([]IngredientBatch, error)
	FindByIngredient(ctx context.Context, ingredientID uuid.UUID, filter shared.Filter) ([]IngredientBatch, error)
	Update(ctx context.Context, batch *IngredientBatch) error
	// CloseDrained marks batches with zero remaining quantity as closed.
	// Best-effort housekeeping outside the critical path.
	CloseDrained(ctx context.Context, ingredientID uuid.UUID) (int64, error)
}

// StockEntryRepository is the append-only store of purchase/adjustment audit
// records
type StockEntryRepository interface {
	Create(ctx context.Context, entry *StockEntry) error
	FindByIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID, filter shared.Filter) ([]StockEntry, error)
	CountByIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID) (int64, error)
}

// StockDeductionRepository is the append-only store of FIFO deduction audit
// records
type StockDeductionRepository interface {
	CreateAll(ctx context.Context, deductions []StockDeduction) error
	FindByIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID, filter shared.Filter) ([]StockDeduction, error)
	FindByOrder(ctx context.Context, organizationID, orderID uuid.UUID) ([]StockDeduction, error)
}
