package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	appinv "github.com/resto/backend/internal/application/inventory"
	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/shared"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Every ledger mutation (aggregate, batches, audit rows) commits or rolls
// back as one unit. Each execution is bounded by a timeout; a transaction
// that exceeds it is rolled back and reported as TRANSACTION_TIMEOUT so
// callers can retry without fear of partial state.
type GormTransactionScope struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormTransactionScope creates a GormTransactionScope with the given
// execution budget. A non-positive timeout disables the bound.
func NewGormTransactionScope(db *gorm.DB, timeout time.Duration) *GormTransactionScope {
	return &GormTransactionScope{db: db, timeout: timeout}
}

// Execute runs the given function within a database transaction. If the
// function returns an error or the budget elapses, the transaction is rolled
// back; otherwise it is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return shared.ErrTransactionTimeout
	}
	return err
}

// gormTransactionalRepositories provides repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Ingredients returns the ingredient repository scoped to the current transaction
func (r *gormTransactionalRepositories) Ingredients() inventory.IngredientRepository {
	return NewGormIngredientRepository(r.tx)
}

// Batches returns the batch repository scoped to the current transaction
func (r *gormTransactionalRepositories) Batches() inventory.IngredientBatchRepository {
	return NewGormIngredientBatchRepository(r.tx)
}

// Entries returns the stock entry repository scoped to the current transaction
func (r *gormTransactionalRepositories) Entries() inventory.StockEntryRepository {
	return NewGormStockEntryRepository(r.tx)
}

// Deductions returns the deduction repository scoped to the current transaction
func (r *gormTransactionalRepositories) Deductions() inventory.StockDeductionRepository {
	return NewGormStockDeductionRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
