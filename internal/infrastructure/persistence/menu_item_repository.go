package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/resto/backend/internal/domain/menu"
	"github.com/resto/backend/internal/domain/shared"
)

// GormMenuItemRepository implements MenuItemRepository using GORM
type GormMenuItemRepository struct {
	db *gorm.DB
}

// NewGormMenuItemRepository creates a new GormMenuItemRepository
func NewGormMenuItemRepository(db *gorm.DB) *GormMenuItemRepository {
	return &GormMenuItemRepository{db: db}
}

// FindByIDForOrg finds a menu item by ID within an organization
func (r *GormMenuItemRepository) FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*menu.MenuItem, error) {
	var item menu.MenuItem
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAllForOrg finds all menu items for an organization
func (r *GormMenuItemRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]*menu.MenuItem, error) {
	var items []*menu.MenuItem
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&menu.MenuItem{}).
			Where("organization_id = ?", organizationID),
		filter,
	)

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountForOrg counts menu items for an organization
func (r *GormMenuItemRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&menu.MenuItem{}).
		Where("organization_id = ?", organizationID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByRecipe returns every menu item linked to the recipe. Used by cost
// propagation after a recipe cost changes.
func (r *GormMenuItemRepository) FindByRecipe(ctx context.Context, organizationID, recipeID uuid.UUID) ([]*menu.MenuItem, error) {
	var items []*menu.MenuItem
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND recipe_id = ?", organizationID, recipeID).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new menu item
func (r *GormMenuItemRepository) Create(ctx context.Context, item *menu.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Save creates or updates a menu item
func (r *GormMenuItemRepository) Save(ctx context.Context, item *menu.MenuItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// applyFilter applies filter options to the query
func (r *GormMenuItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
func (r *GormMenuItemRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		case "category":
			query = query.Where("category = ?", value)
		case "has_recipe":
			if value == true {
				query = query.Where("recipe_id IS NOT NULL")
			}
		case "margin_below":
			query = query.Where("margin IS NOT NULL AND margin < ?", value)
		}
	}

	return query
}

// Ensure GormMenuItemRepository implements MenuItemRepository
var _ menu.MenuItemRepository = (*GormMenuItemRepository)(nil)
