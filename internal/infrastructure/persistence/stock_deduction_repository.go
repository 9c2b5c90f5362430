package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/shared"
)

// GormStockDeductionRepository implements StockDeductionRepository using GORM.
// Deduction records are append-only.
type GormStockDeductionRepository struct {
	db *gorm.DB
}

// NewGormStockDeductionRepository creates a new GormStockDeductionRepository
func NewGormStockDeductionRepository(db *gorm.DB) *GormStockDeductionRepository {
	return &GormStockDeductionRepository{db: db}
}

// CreateAll appends every batch-level record of one logical deduction
func (r *GormStockDeductionRepository) CreateAll(ctx context.Context, deductions []inventory.StockDeduction) error {
	if len(deductions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&deductions).Error
}

// FindByIngredient returns the consumption history of an ingredient
func (r *GormStockDeductionRepository) FindByIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID, filter shared.Filter) ([]inventory.StockDeduction, error) {
	var deductions []inventory.StockDeduction
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockDeduction{}).
			Where("organization_id = ? AND ingredient_id = ?", organizationID, ingredientID),
		filter,
	)

	if err := query.Find(&deductions).Error; err != nil {
		return nil, err
	}
	return deductions, nil
}

// FindByOrder returns every deduction record attributed to an order
func (r *GormStockDeductionRepository) FindByOrder(ctx context.Context, organizationID, orderID uuid.UUID) ([]inventory.StockDeduction, error) {
	var deductions []inventory.StockDeduction
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND order_id = ?", organizationID, orderID).
		Order("created_at ASC").
		Find(&deductions).Error; err != nil {
		return nil, err
	}
	return deductions, nil
}

// applyFilter applies filter options to the query
func (r *GormStockDeductionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		query = query.Order("created_at DESC")
	}

	for key, value := range filter.Filters {
		switch key {
		case "batch_id":
			query = query.Where("batch_id = ?", value)
		case "recipe_id":
			query = query.Where("recipe_id = ?", value)
		}
	}

	return query
}

// Ensure GormStockDeductionRepository implements StockDeductionRepository
var _ inventory.StockDeductionRepository = (*GormStockDeductionRepository)(nil)
