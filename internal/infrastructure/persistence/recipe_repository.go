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

// GormRecipeRepository implements RecipeRepository using GORM. Ingredient
// lines are loaded and saved together with the recipe.
type GormRecipeRepository struct {
	db *gorm.DB
}

// NewGormRecipeRepository creates a new GormRecipeRepository
func NewGormRecipeRepository(db *gorm.DB) *GormRecipeRepository {
	return &GormRecipeRepository{db: db}
}

// FindByIDForOrg finds a recipe by ID within an organization, lines preloaded
func (r *GormRecipeRepository) FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*menu.Recipe, error) {
	var recipe menu.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// FindAllForOrg finds all recipes for an organization
func (r *GormRecipeRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]*menu.Recipe, error) {
	var recipes []*menu.Recipe
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&menu.Recipe{}).
			Preload("Ingredients").
			Where("organization_id = ?", organizationID),
		filter,
	)

	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// CountForOrg counts recipes for an organization
func (r *GormRecipeRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&menu.Recipe{}).
		Where("organization_id = ?", organizationID)
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByIngredient returns every recipe with a line for the ingredient.
// Used by cost propagation to discover which recipes a cost change touches.
func (r *GormRecipeRepository) FindByIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID) ([]*menu.Recipe, error) {
	var recipes []*menu.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = recipes.id").
		Where("recipes.organization_id = ? AND recipe_ingredients.ingredient_id = ?", organizationID, ingredientID).
		Group("recipes.id").
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// Create inserts a recipe with its ingredient lines
func (r *GormRecipeRepository) Create(ctx context.Context, recipe *menu.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

// Save persists a recipe and its lines. Line cost mutations from a cost
// recalculation must land together with the new total.
func (r *GormRecipeRepository) Save(ctx context.Context, recipe *menu.Recipe) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(recipe).Error
}

// applyFilter applies filter options to the query
func (r *GormRecipeRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

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

// Ensure GormRecipeRepository implements RecipeRepository
var _ menu.RecipeRepository = (*GormRecipeRepository)(nil)
