package menu

import (
	"context"

	"github.com/google/uuid"

	"github.com/resto/backend/internal/domain/shared"
)

// RecipeRepository persists recipes with their ingredient lines
type RecipeRepository interface {
	FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*Recipe, error)
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]*Recipe, error)
	CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error)
	// FindByIngredient returns every recipe with a line for the ingredient,
	// lines preloaded
	FindByIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID) ([]*Recipe, error)
	Create(ctx context.Context, recipe *Recipe) error
	Save(ctx context.Context, recipe *Recipe) error
}

// MenuItemRepository persists menu items
type MenuItemRepository interface {
	FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*MenuItem, error)
	FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]*MenuItem, error)
	CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error)
	FindByRecipe(ctx context.Context, organizationID, recipeID uuid.UUID) ([]*MenuItem, error)
	Create(ctx context.Context, item *MenuItem) error
	Save(ctx context.Context, item *MenuItem) error
}
