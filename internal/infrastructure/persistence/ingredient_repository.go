package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/shared"
)

// GormIngredientRepository implements IngredientRepository using GORM
type GormIngredientRepository struct {
	db *gorm.DB
}

// NewGormIngredientRepository creates a new GormIngredientRepository
func NewGormIngredientRepository(db *gorm.DB) *GormIngredientRepository {
	return &GormIngredientRepository{db: db}
}

// FindByIDForOrg finds an ingredient by ID within an organization
func (r *GormIngredientRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*inventory.Ingredient, error) {
	var ing inventory.Ingredient
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&ing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ing, nil
}

// FindByIDForOrgLocked loads the ingredient row with SELECT ... FOR UPDATE.
// The lock lives until the surrounding transaction ends, serializing
// concurrent stock mutations per ingredient.
func (r *GormIngredientRepository) FindByIDForOrgLocked(ctx context.Context, organizationID, id uuid.UUID) (*inventory.Ingredient, error) {
	var ing inventory.Ingredient
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&ing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ing, nil
}

// FindAllForOrg finds all ingredients for an organization
func (r *GormIngredientRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]inventory.Ingredient, error) {
	var ingredients []inventory.Ingredient
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.Ingredient{}).
			Where("organization_id = ?", organizationID),
		filter,
	)

	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// CountForOrg counts ingredients for an organization
func (r *GormIngredientRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.Ingredient{}).
		Where("organization_id = ?", organizationID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindBelowReorderThreshold returns active ingredients at or below their
// reorder threshold
func (r *GormIngredientRepository) FindBelowReorderThreshold(ctx context.Context, organizationID uuid.UUID) ([]inventory.Ingredient, error) {
	var ingredients []inventory.Ingredient
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND active = TRUE AND reorder_threshold IS NOT NULL AND total_stock <= reorder_threshold", organizationID).
		Order("name ASC").
		Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// Create inserts a new ingredient
func (r *GormIngredientRepository) Create(ctx context.Context, ing *inventory.Ingredient) error {
	return r.db.WithContext(ctx).Create(ing).Error
}

// Save creates or updates an ingredient
func (r *GormIngredientRepository) Save(ctx context.Context, ing *inventory.Ingredient) error {
	return r.db.WithContext(ctx).Save(ing).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormIngredientRepository) SaveWithLock(ctx context.Context, ing *inventory.Ingredient) error {
	result := r.db.WithContext(ctx).
		Model(ing).
		Where("id = ? AND version = ?", ing.ID, ing.Version-1).
		Updates(map[string]interface{}{
			"name":              ing.Name,
			"unit":              ing.Unit,
			"active":            ing.Active,
			"total_stock":       ing.TotalStock,
			"average_unit_cost": ing.AverageUnitCost,
			"fifo_unit_cost":    ing.FIFOUnitCost,
			"reorder_threshold": ing.ReorderThreshold,
			"version":           ing.Version,
			"updated_at":        ing.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormIngredientRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

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
		query = query.Order("name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormIngredientRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		case "below_threshold":
			if value == true {
				query = query.Where("reorder_threshold IS NOT NULL AND total_stock <= reorder_threshold")
			}
		case "unit":
			query = query.Where("unit = ?", value)
		}
	}

	return query
}

// Ensure GormIngredientRepository implements IngredientRepository
var _ inventory.IngredientRepository = (*GormIngredientRepository)(nil)
