package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/shared"
)

// GormStockEntryRepository implements StockEntryRepository using GORM.
// Entries are append-only; there is deliberately no update or delete.
type GormStockEntryRepository struct {
	db *gorm.DB
}

// NewGormStockEntryRepository creates a new GormStockEntryRepository
func NewGormStockEntryRepository(db *gorm.DB) *GormStockEntryRepository {
	return &GormStockEntryRepository{db: db}
}

// Create appends an audit entry
func (r *GormStockEntryRepository) Create(ctx context.Context, entry *inventory.StockEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByIngredient returns the movement history of an ingredient
func (r *GormStockEntryRepository) FindByIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID, filter shared.Filter) ([]inventory.StockEntry, error) {
	var entries []inventory.StockEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockEntry{}).
			Where("organization_id = ? AND ingredient_id = ?", organizationID, ingredientID),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByIngredient counts audit entries for an ingredient
func (r *GormStockEntryRepository) CountByIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockEntry{}).
		Where("organization_id = ? AND ingredient_id = ?", organizationID, ingredientID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormStockEntryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		case "entry_type":
			query = query.Where("entry_type = ?", value)
		case "batch_id":
			query = query.Where("batch_id = ?", value)
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		}
	}

	return query
}

// Ensure GormStockEntryRepository implements StockEntryRepository
var _ inventory.StockEntryRepository = (*GormStockEntryRepository)(nil)
