package inventory

import (
	"context"

	"github.com/resto/backend/internal/domain/inventory"
)

// TransactionScope runs ledger mutations inside one database transaction.
// Everything done through the repositories handed to fn commits or rolls
// back atomically; a timeout inside the scope surfaces as
// shared.ErrTransactionTimeout and leaves no partial state behind.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the inventory repositories bound to the
// current transaction. The locked repository variants take row locks that
// live until the transaction ends, which is what serializes concurrent
// deductions of the same ingredient.
type TransactionalRepositories interface {
	Ingredients() inventory.IngredientRepository
	Batches() inventory.IngredientBatchRepository
	Entries() inventory.StockEntryRepository
	Deductions() inventory.StockDeductionRepository
}

// NoOpTransactionScope runs the function without a real transaction. Used in
// tests where the repositories are mocks and atomicity is not under test.
type NoOpTransactionScope struct {
	ingredientRepo inventory.IngredientRepository
	batchRepo      inventory.IngredientBatchRepository
	entryRepo      inventory.StockEntryRepository
	deductionRepo  inventory.StockDeductionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	ingredientRepo inventory.IngredientRepository,
	batchRepo inventory.IngredientBatchRepository,
	entryRepo inventory.StockEntryRepository,
	deductionRepo inventory.StockDeductionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		ingredientRepo: ingredientRepo,
		batchRepo:      batchRepo,
		entryRepo:      entryRepo,
		deductionRepo:  deductionRepo,
	}
}

// Execute runs the function directly against the wrapped repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Ingredients() inventory.IngredientRepository {
	return s.ingredientRepo
}

func (s *NoOpTransactionScope) Batches() inventory.IngredientBatchRepository {
	return s.batchRepo
}

func (s *NoOpTransactionScope) Entries() inventory.StockEntryRepository {
	return s.entryRepo
}

func (s *NoOpTransactionScope) Deductions() inventory.StockDeductionRepository {
	return s.deductionRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
