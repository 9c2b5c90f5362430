package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/shared"
)

// StockCache invalidates cached stock reads after a committed mutation.
// Invalidation runs post-commit and is fire-and-forget: a failure leaves a
// stale cache entry until its TTL, never a wrong ledger.
type StockCache interface {
	InvalidateIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID) error
}

// StockService implements the inventory ledger operations: receiving goods
// into batches, FIFO deductions, manual adjustments, and stock reads. All
// mutations run inside a TransactionScope; domain events and cache
// invalidation happen only after the transaction commits.
type StockService struct {
	ingredientRepo inventory.IngredientRepository
	batchRepo      inventory.IngredientBatchRepository
	entryRepo      inventory.StockEntryRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	cache          StockCache
	logger         *zap.Logger
}

// NewStockService creates a StockService. The plain repositories serve
// non-transactional reads; every mutation goes through the scope.
func NewStockService(
	ingredientRepo inventory.IngredientRepository,
	batchRepo inventory.IngredientBatchRepository,
	entryRepo inventory.StockEntryRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		ingredientRepo: ingredientRepo,
		batchRepo:      batchRepo,
		entryRepo:      entryRepo,
		txScope:        txScope,
		logger:         logger,
	}
}

// SetEventPublisher sets the publisher for post-commit domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetCache sets the cache invalidator for post-commit invalidation
func (s *StockService) SetCache(cache StockCache) {
	s.cache = cache
}

// CreateIngredient registers a new ingredient with zero stock
func (s *StockService) CreateIngredient(ctx context.Context, organizationID uuid.UUID, req CreateIngredientRequest) (*IngredientResponse, error) {
	ing, err := inventory.NewIngredient(organizationID, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}
	if req.ReorderThreshold != nil {
		if err := ing.SetReorderThreshold(*req.ReorderThreshold); err != nil {
			return nil, err
		}
	}
	if err := s.ingredientRepo.Create(ctx, ing); err != nil {
		return nil, err
	}
	response := ToIngredientResponse(ing)
	return &response, nil
}

// UpdateIngredient applies partial updates to an ingredient's metadata
func (s *StockService) UpdateIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID, req UpdateIngredientRequest) (*IngredientResponse, error) {
	ing, err := s.ingredientRepo.FindByIDForOrg(ctx, organizationID, ingredientID)
	if err != nil {
		return nil, err
	}
	changed := false
	if req.Name != nil {
		if err := ing.Rename(*req.Name); err != nil {
			return nil, err
		}
		changed = true
	}
	if req.ClearReorderThreshold {
		ing.ClearReorderThreshold()
		changed = true
	} else if req.ReorderThreshold != nil {
		if err := ing.SetReorderThreshold(*req.ReorderThreshold); err != nil {
			return nil, err
		}
		changed = true
	}
	// Nothing changed means no version bump, and SaveWithLock's version
	// predicate would reject the write as a stale update.
	if changed {
		if err := s.ingredientRepo.SaveWithLock(ctx, ing); err != nil {
			return nil, err
		}
	}
	response := ToIngredientResponse(ing)
	return &response, nil
}

// DeactivateIngredient marks an ingredient inactive, keeping its ledger
func (s *StockService) DeactivateIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID) error {
	ing, err := s.ingredientRepo.FindByIDForOrg(ctx, organizationID, ingredientID)
	if err != nil {
		return err
	}
	ing.Deactivate()
	return s.ingredientRepo.SaveWithLock(ctx, ing)
}

// GetIngredient returns the stock summary for one ingredient
func (s *StockService) GetIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID) (*IngredientResponse, error) {
	ing, err := s.ingredientRepo.FindByIDForOrg(ctx, organizationID, ingredientID)
	if err != nil {
		return nil, err
	}
	response := ToIngredientResponse(ing)
	return &response, nil
}

// ListIngredients returns ingredients with pagination
func (s *StockService) ListIngredients(ctx context.Context, organizationID uuid.UUID, filter IngredientListFilter) ([]IngredientResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.ActiveOnly {
		domainFilter.Filters["active"] = true
	}
	if filter.BelowThreshold {
		domainFilter.Filters["below_threshold"] = true
	}

	items, err := s.ingredientRepo.FindAllForOrg(ctx, organizationID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ingredientRepo.CountForOrg(ctx, organizationID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToIngredientResponses(items), total, nil
}

// ListOpenBatches returns the open batches of an ingredient in FIFO order
func (s *StockService) ListOpenBatches(ctx context.Context, organizationID, ingredientID uuid.UUID) ([]BatchResponse, error) {
	if _, err := s.ingredientRepo.FindByIDForOrg(ctx, organizationID, ingredientID); err != nil {
		return nil, err
	}
	batches, err := s.batchRepo.FindOpenByIngredient(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	return ToBatchResponses(batches), nil
}

// ListStockEntries returns the movement audit trail for an ingredient
func (s *StockService) ListStockEntries(ctx context.Context, organizationID, ingredientID uuid.UUID, filter shared.Filter) ([]StockEntryResponse, int64, error) {
	entries, err := s.entryRepo.FindByIngredient(ctx, organizationID, ingredientID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.entryRepo.CountByIngredient(ctx, organizationID, ingredientID)
	if err != nil {
		return nil, 0, err
	}
	return ToStockEntryResponses(entries), total, nil
}

// GetLowStockAlerts returns active ingredients at or below their reorder threshold
func (s *StockService) GetLowStockAlerts(ctx context.Context, organizationID uuid.UUID) ([]LowStockAlertResponse, error) {
	items, err := s.ingredientRepo.FindBelowReorderThreshold(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	alerts := make([]LowStockAlertResponse, 0, len(items))
	for i := range items {
		ing := &items[i]
		if ing.ReorderThreshold == nil {
			continue
		}
		alerts = append(alerts, LowStockAlertResponse{
			IngredientID:     ing.ID,
			Name:             ing.Name,
			Unit:             ing.Unit,
			TotalStock:       ing.TotalStock,
			ReorderThreshold: *ing.ReorderThreshold,
		})
	}
	return alerts, nil
}

// RecordStockEntry receives goods: creates a new batch, blends the purchase
// into the weighted-average cost, refreshes the FIFO cost from the oldest
// open batch, and writes the audit entry. All of it commits atomically.
func (s *StockService) RecordStockEntry(ctx context.Context, organizationID uuid.UUID, req RecordStockEntryRequest) (*RecordStockEntryResponse, error) {
	var (
		response RecordStockEntryResponse
		events   []shared.DomainEvent
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ing, err := repos.Ingredients().FindByIDForOrgLocked(ctx, organizationID, req.IngredientID)
		if err != nil {
			return err
		}

		unitCost := inventory.UnitCostOf(req.Quantity, req.TotalCost)
		batch, err := inventory.NewIngredientBatch(ing.ID, req.Quantity, unitCost, req.ReceiptRef, req.ExpiryDate, req.BranchID)
		if err != nil {
			return err
		}
		if err := repos.Batches().Create(ctx, batch); err != nil {
			return err
		}

		oldCost := ing.FIFOUnitCost
		if err := ing.ApplyPurchase(req.Quantity, req.TotalCost); err != nil {
			return err
		}

		openBatches, err := repos.Batches().FindOpenByIngredient(ctx, ing.ID)
		if err != nil {
			return err
		}
		ing.RefreshFIFOUnitCost(openBatches)

		if err := repos.Ingredients().Save(ctx, ing); err != nil {
			return err
		}

		entry, err := inventory.NewPurchaseEntry(organizationID, ing.ID, batch.ID, req.Quantity, unitCost, req.TotalCost, req.ReceiptRef, req.BranchID)
		if err != nil {
			return err
		}
		if err := repos.Entries().Create(ctx, entry); err != nil {
			return err
		}

		events = append(events, inventory.NewBatchReceivedEvent(ing, batch))
		if costChanged(oldCost, ing.FIFOUnitCost) {
			events = append(events, inventory.NewIngredientCostChangedEvent(ing, oldCost, ing.FIFOUnitCost))
		}

		response = RecordStockEntryResponse{
			Entry:      ToStockEntryResponse(entry),
			Batch:      ToBatchResponse(batch),
			Ingredient: ToIngredientResponse(ing),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, organizationID, req.IngredientID, events)
	return &response, nil
}

// DeductStock consumes stock FIFO across open batches. The ingredient row and
// its open batches are locked for the duration of the transaction, so
// concurrent deductions of the same ingredient serialize and can never
// double-spend a batch.
func (s *StockService) DeductStock(ctx context.Context, organizationID uuid.UUID, req DeductStockRequest) (*DeductStockResponse, error) {
	var (
		response DeductStockResponse
		events   []shared.DomainEvent
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ing, err := repos.Ingredients().FindByIDForOrgLocked(ctx, organizationID, req.IngredientID)
		if err != nil {
			return err
		}
		if ing.TotalStock.LessThan(req.Quantity) {
			return shared.ErrInsufficientStock
		}

		openBatches, err := repos.Batches().FindOpenByIngredientLocked(ctx, ing.ID)
		if err != nil {
			return err
		}

		plan, err := inventory.PlanFIFODeduction(req.Quantity, openBatches)
		if err != nil {
			// The aggregate said there was enough stock but the batch ledger
			// cannot cover it: the two views have diverged.
			if de, ok := err.(*shared.DomainError); ok && de.Code == shared.ErrInsufficientStock.Code {
				s.logger.Error("stock aggregate and batch ledger disagree",
					zap.String("ingredient_id", ing.ID.String()),
					zap.String("total_stock", ing.TotalStock.String()),
					zap.String("requested", req.Quantity.String()))
				return shared.ErrConsistencyViolation
			}
			return err
		}

		byID := make(map[uuid.UUID]*inventory.IngredientBatch, len(openBatches))
		for i := range openBatches {
			byID[openBatches[i].ID] = &openBatches[i]
		}

		ref := inventory.DeductionRef{OrderID: req.OrderID, RecipeID: req.RecipeID, Reason: req.Reason}
		deductions := make([]inventory.StockDeduction, 0, len(plan.Slices))
		for _, slice := range plan.Slices {
			batch := byID[slice.BatchID]
			if err := batch.Consume(slice.Quantity); err != nil {
				return err
			}
			if err := repos.Batches().Update(ctx, batch); err != nil {
				return err
			}
			deduction, err := inventory.NewStockDeduction(organizationID, ing.ID, slice, ref)
			if err != nil {
				return err
			}
			deductions = append(deductions, *deduction)
		}
		if err := repos.Deductions().CreateAll(ctx, deductions); err != nil {
			return err
		}

		oldCost := ing.FIFOUnitCost
		if err := ing.ApplyDeduction(plan.TotalQuantity); err != nil {
			return err
		}

		surviving := make([]inventory.IngredientBatch, 0, len(openBatches))
		for i := range openBatches {
			if openBatches[i].IsOpen() {
				surviving = append(surviving, openBatches[i])
			}
		}
		ing.RefreshFIFOUnitCost(surviving)

		if err := repos.Ingredients().Save(ctx, ing); err != nil {
			return err
		}

		events = append(events, inventory.NewStockDeductedEvent(ing, plan.TotalQuantity, plan.TotalCost, req.OrderID))
		if costChanged(oldCost, ing.FIFOUnitCost) {
			events = append(events, inventory.NewIngredientCostChangedEvent(ing, oldCost, ing.FIFOUnitCost))
		}
		if ing.IsBelowReorderThreshold() {
			events = append(events, inventory.NewStockBelowThresholdEvent(ing))
		}

		slices := make([]DeductionSliceResponse, len(plan.Slices))
		for i, slice := range plan.Slices {
			slices[i] = DeductionSliceResponse{
				BatchID:  slice.BatchID,
				Quantity: slice.Quantity,
				UnitCost: slice.UnitCost,
				LineCost: slice.LineCost,
			}
		}
		response = DeductStockResponse{
			IngredientID:  ing.ID,
			TotalQuantity: plan.TotalQuantity,
			TotalCost:     plan.TotalCost,
			Slices:        slices,
			Ingredient:    ToIngredientResponse(ing),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, organizationID, req.IngredientID, events)
	return &response, nil
}

// AdjustStock applies a signed manual correction to total stock. Adjustments
// do not touch batch remainders; the audit entry is valued at the current
// FIFO cost, falling back to the average cost.
func (s *StockService) AdjustStock(ctx context.Context, organizationID uuid.UUID, req AdjustStockRequest) (*AdjustStockResponse, error) {
	var (
		response AdjustStockResponse
		events   []shared.DomainEvent
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ing, err := repos.Ingredients().FindByIDForOrgLocked(ctx, organizationID, req.IngredientID)
		if err != nil {
			return err
		}

		unitCost, err := ing.ApplyAdjustment(req.Delta)
		if err != nil {
			return err
		}
		if err := repos.Ingredients().Save(ctx, ing); err != nil {
			return err
		}

		entry, err := inventory.NewAdjustmentEntry(organizationID, ing.ID, req.Delta, unitCost, req.Reason, req.BranchID)
		if err != nil {
			return err
		}
		if err := repos.Entries().Create(ctx, entry); err != nil {
			return err
		}

		events = append(events, inventory.NewStockAdjustedEvent(ing, req.Delta, req.Reason))
		if ing.IsBelowReorderThreshold() {
			events = append(events, inventory.NewStockBelowThresholdEvent(ing))
		}

		response = AdjustStockResponse{
			Entry:      ToStockEntryResponse(entry),
			Ingredient: ToIngredientResponse(ing),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, organizationID, req.IngredientID, events)
	return &response, nil
}

// afterCommit sweeps drained batches, publishes domain events and
// invalidates cached reads. All of it is fire-and-forget: the transaction is
// already committed.
func (s *StockService) afterCommit(ctx context.Context, organizationID, ingredientID uuid.UUID, events []shared.DomainEvent) {
	if n, err := s.batchRepo.CloseDrained(ctx, ingredientID); err != nil {
		s.logger.Warn("failed to close drained batches",
			zap.String("ingredient_id", ingredientID.String()),
			zap.Error(err))
	} else if n > 0 {
		s.logger.Debug("closed drained batches",
			zap.String("ingredient_id", ingredientID.String()),
			zap.Int64("count", n))
	}
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish domain events",
				zap.String("ingredient_id", ingredientID.String()),
				zap.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.InvalidateIngredient(ctx, organizationID, ingredientID); err != nil {
			s.logger.Warn("failed to invalidate stock cache",
				zap.String("ingredient_id", ingredientID.String()),
				zap.Error(err))
		}
	}
}

func costChanged(oldCost, newCost *decimal.Decimal) bool {
	switch {
	case oldCost == nil && newCost == nil:
		return false
	case oldCost == nil || newCost == nil:
		return true
	default:
		return !oldCost.Equal(*newCost)
	}
}
