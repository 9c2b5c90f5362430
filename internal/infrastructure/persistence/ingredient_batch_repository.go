package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/shared"
)

// GormIngredientBatchRepository implements IngredientBatchRepository using GORM
type GormIngredientBatchRepository struct {
	db *gorm.DB
}

// NewGormIngredientBatchRepository creates a new GormIngredientBatchRepository
func NewGormIngredientBatchRepository(db *gorm.DB) *GormIngredientBatchRepository {
	return &GormIngredientBatchRepository{db: db}
}

// Create inserts a new batch
func (r *GormIngredientBatchRepository) Create(ctx context.Context, batch *inventory.IngredientBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

// FindByID finds a batch by its ID
func (r *GormIngredientBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.IngredientBatch, error) {
	var batch inventory.IngredientBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindOpenByIngredient returns open batches in FIFO order: oldest receipt
// first, batch ID as a deterministic tie-break.
func (r *GormIngredientBatchRepository) FindOpenByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]inventory.IngredientBatch, error) {
	var batches []inventory.IngredientBatch
	if err := r.db.WithContext(ctx).
		Where("ingredient_id = ? AND closed = FALSE AND remaining_qty > 0", ingredientID).
		Order("created_at ASC, id ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindOpenByIngredientLocked is FindOpenByIngredient with SELECT ... FOR
// UPDATE. The deduction transaction uses it so two concurrent walks cannot
// consume the same batch remainder.
func (r *GormIngredientBatchRepository) FindOpenByIngredientLocked(ctx context.Context, ingredientID uuid.UUID) ([]inventory.IngredientBatch, error) {
	var batches []inventory.IngredientBatch
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("ingredient_id = ? AND closed = FALSE AND remaining_qty > 0", ingredientID).
		Order("created_at ASC, id ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindByIngredient finds all batches for an ingredient, open or closed
func (r *GormIngredientBatchRepository) FindByIngredient(ctx context.Context, ingredientID uuid.UUID, filter shared.Filter) ([]inventory.IngredientBatch, error) {
	var batches []inventory.IngredientBatch
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.IngredientBatch{}).
			Where("ingredient_id = ?", ingredientID),
		filter,
	)

	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Update persists batch mutations (remaining quantity, closed flag)
func (r *GormIngredientBatchRepository) Update(ctx context.Context, batch *inventory.IngredientBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// CloseDrained marks batches whose remaining quantity reached zero as closed.
// Housekeeping only; Consume already closes batches on the hot path.
func (r *GormIngredientBatchRepository) CloseDrained(ctx context.Context, ingredientID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&inventory.IngredientBatch{}).
		Where("ingredient_id = ? AND closed = FALSE AND remaining_qty <= 0", ingredientID).
		Update("closed", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// applyFilter applies filter options to the query
func (r *GormIngredientBatchRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at ASC, id ASC")
	}

	for key, value := range filter.Filters {
		switch key {
		case "open":
			if value == true {
				query = query.Where("closed = FALSE AND remaining_qty > 0")
			}
		case "closed":
			query = query.Where("closed = ?", value)
		case "expired":
			if value == true {
				query = query.Where("expiry_date IS NOT NULL AND expiry_date <= ?", time.Now())
			}
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		}
	}

	return query
}

// Ensure GormIngredientBatchRepository implements IngredientBatchRepository
var _ inventory.IngredientBatchRepository = (*GormIngredientBatchRepository)(nil)
