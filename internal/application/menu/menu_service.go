package menu

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/resto/backend/internal/domain/identity"
	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/menu"
	"github.com/resto/backend/internal/domain/shared"
)

// MenuService manages recipes and menu items and keeps their derived costs in
// sync with ingredient costs. Recipe lines are priced at the ingredient's
// weighted-average unit cost; menu item margins are derived from the linked
// recipe's cost per portion.
type MenuService struct {
	recipeRepo     menu.RecipeRepository
	menuItemRepo   menu.MenuItemRepository
	ingredientRepo inventory.IngredientRepository
	orgRepo        identity.OrganizationRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewMenuService creates a MenuService
func NewMenuService(
	recipeRepo menu.RecipeRepository,
	menuItemRepo menu.MenuItemRepository,
	ingredientRepo inventory.IngredientRepository,
	orgRepo identity.OrganizationRepository,
	logger *zap.Logger,
) *MenuService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuService{
		recipeRepo:     recipeRepo,
		menuItemRepo:   menuItemRepo,
		ingredientRepo: ingredientRepo,
		orgRepo:        orgRepo,
		logger:         logger,
	}
}

// SetEventPublisher sets the publisher for domain events
func (s *MenuService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateRecipe creates a recipe and prices its lines at current ingredient costs
func (s *MenuService) CreateRecipe(ctx context.Context, organizationID uuid.UUID, req CreateRecipeRequest) (*RecipeResponse, error) {
	recipe, err := menu.NewRecipe(organizationID, req.Name, req.YieldQuantity)
	if err != nil {
		return nil, err
	}
	for _, line := range req.Lines {
		// Reject lines pointing at ingredients the org does not own
		if _, err := s.ingredientRepo.FindByIDForOrg(ctx, organizationID, line.IngredientID); err != nil {
			return nil, err
		}
		if err := recipe.AddIngredient(line.IngredientID, line.Quantity); err != nil {
			return nil, err
		}
	}

	costs, err := s.ingredientCosts(ctx, organizationID, recipe)
	if err != nil {
		return nil, err
	}
	recipe.RecalculateTotalCost(costs)

	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, err
	}
	response := ToRecipeResponse(recipe)
	return &response, nil
}

// GetRecipe returns a recipe with its priced lines
func (s *MenuService) GetRecipe(ctx context.Context, organizationID, recipeID uuid.UUID) (*RecipeResponse, error) {
	recipe, err := s.recipeRepo.FindByIDForOrg(ctx, recipeID, organizationID)
	if err != nil {
		return nil, err
	}
	response := ToRecipeResponse(recipe)
	return &response, nil
}

// ListRecipes returns recipes with pagination
func (s *MenuService) ListRecipes(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]RecipeResponse, int64, error) {
	recipes, err := s.recipeRepo.FindAllForOrg(ctx, organizationID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.recipeRepo.CountForOrg(ctx, organizationID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToRecipeResponses(recipes), total, nil
}

// RecalculateRecipeCost re-prices a recipe's lines at current ingredient
// costs and, when the total moved, propagates the change to every menu item
// linked to the recipe.
func (s *MenuService) RecalculateRecipeCost(ctx context.Context, organizationID, recipeID uuid.UUID) (*RecipeResponse, error) {
	recipe, err := s.recipeRepo.FindByIDForOrg(ctx, recipeID, organizationID)
	if err != nil {
		return nil, err
	}

	costs, err := s.ingredientCosts(ctx, organizationID, recipe)
	if err != nil {
		return nil, err
	}

	if recipe.RecalculateTotalCost(costs) {
		if err := s.recipeRepo.Save(ctx, recipe); err != nil {
			return nil, err
		}
		s.publish(ctx, menu.NewRecipeCostRecalculatedEvent(recipe))
		if err := s.recalculateItemsForRecipe(ctx, organizationID, recipe); err != nil {
			return nil, err
		}
	}

	response := ToRecipeResponse(recipe)
	return &response, nil
}

// CreateMenuItem creates a menu item, optionally linked to a recipe. A linked
// item gets its cost and margin computed immediately.
func (s *MenuService) CreateMenuItem(ctx context.Context, organizationID uuid.UUID, req CreateMenuItemRequest) (*MenuItemResponse, error) {
	item, err := menu.NewMenuItem(organizationID, req.Name, req.BasePrice)
	if err != nil {
		return nil, err
	}
	item.Category = req.Category

	if req.RecipeID != nil {
		multiplier := decimal.NewFromInt(1)
		if req.PortionMultiplier != nil {
			multiplier = *req.PortionMultiplier
		}
		recipe, err := s.recipeRepo.FindByIDForOrg(ctx, *req.RecipeID, organizationID)
		if err != nil {
			return nil, err
		}
		if err := item.LinkRecipe(recipe.ID, multiplier); err != nil {
			return nil, err
		}
		if _, err := item.RecalculateCost(recipe); err != nil {
			return nil, err
		}
	}

	if err := s.menuItemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.checkMargin(ctx, organizationID, item)

	response := ToMenuItemResponse(item)
	return &response, nil
}

// UpdateMenuItem applies partial updates; recipe or price changes refresh the
// derived cost and margin
func (s *MenuService) UpdateMenuItem(ctx context.Context, organizationID, itemID uuid.UUID, req UpdateMenuItemRequest) (*MenuItemResponse, error) {
	item, err := s.menuItemRepo.FindByIDForOrg(ctx, itemID, organizationID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.BasePrice != nil {
		if err := item.SetBasePrice(*req.BasePrice); err != nil {
			return nil, err
		}
	}
	if req.UnlinkRecipe {
		item.UnlinkRecipe()
	} else if req.RecipeID != nil || req.PortionMultiplier != nil {
		recipeID := item.RecipeID
		if req.RecipeID != nil {
			recipeID = req.RecipeID
		}
		if recipeID == nil {
			return nil, shared.NewDomainError("NO_RECIPE", "Cannot set a portion multiplier without a recipe")
		}
		multiplier := item.PortionMultiplier
		if req.PortionMultiplier != nil {
			multiplier = *req.PortionMultiplier
		}
		recipe, err := s.recipeRepo.FindByIDForOrg(ctx, *recipeID, organizationID)
		if err != nil {
			return nil, err
		}
		if err := item.LinkRecipe(recipe.ID, multiplier); err != nil {
			return nil, err
		}
		if _, err := item.RecalculateCost(recipe); err != nil {
			return nil, err
		}
	}

	if err := s.menuItemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.checkMargin(ctx, organizationID, item)

	response := ToMenuItemResponse(item)
	return &response, nil
}

// GetMenuItem returns a menu item with its derived cost fields
func (s *MenuService) GetMenuItem(ctx context.Context, organizationID, itemID uuid.UUID) (*MenuItemResponse, error) {
	item, err := s.menuItemRepo.FindByIDForOrg(ctx, itemID, organizationID)
	if err != nil {
		return nil, err
	}
	response := ToMenuItemResponse(item)
	return &response, nil
}

// ListMenuItems returns menu items with pagination
func (s *MenuService) ListMenuItems(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]MenuItemResponse, int64, error) {
	items, err := s.menuItemRepo.FindAllForOrg(ctx, organizationID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.menuItemRepo.CountForOrg(ctx, organizationID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToMenuItemResponses(items), total, nil
}

// RecalculateMenuItemCost refreshes one item's cost and margin from its recipe
func (s *MenuService) RecalculateMenuItemCost(ctx context.Context, organizationID, itemID uuid.UUID) (*MenuItemResponse, error) {
	item, err := s.menuItemRepo.FindByIDForOrg(ctx, itemID, organizationID)
	if err != nil {
		return nil, err
	}
	if item.RecipeID == nil {
		return nil, shared.NewDomainError("NO_RECIPE", "Menu item has no linked recipe")
	}
	recipe, err := s.recipeRepo.FindByIDForOrg(ctx, *item.RecipeID, organizationID)
	if err != nil {
		return nil, err
	}

	changed, err := item.RecalculateCost(recipe)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.menuItemRepo.Save(ctx, item); err != nil {
			return nil, err
		}
		s.publish(ctx, menu.NewMenuItemCostChangedEvent(item))
		s.checkMargin(ctx, organizationID, item)
	}

	response := ToMenuItemResponse(item)
	return &response, nil
}

// PropagateIngredientCostChange re-prices every recipe that uses the
// ingredient and cascades into the linked menu items. Invoked by the
// ingredient-cost-changed event handler.
func (s *MenuService) PropagateIngredientCostChange(ctx context.Context, organizationID, ingredientID uuid.UUID) error {
	recipes, err := s.recipeRepo.FindByIngredient(ctx, organizationID, ingredientID)
	if err != nil {
		return err
	}
	for _, recipe := range recipes {
		costs, err := s.ingredientCosts(ctx, organizationID, recipe)
		if err != nil {
			return err
		}
		if !recipe.RecalculateTotalCost(costs) {
			continue
		}
		if err := s.recipeRepo.Save(ctx, recipe); err != nil {
			return err
		}
		s.publish(ctx, menu.NewRecipeCostRecalculatedEvent(recipe))
		if err := s.recalculateItemsForRecipe(ctx, organizationID, recipe); err != nil {
			return err
		}
	}
	return nil
}

// recalculateItemsForRecipe refreshes cost and margin on every menu item
// linked to the recipe
func (s *MenuService) recalculateItemsForRecipe(ctx context.Context, organizationID uuid.UUID, recipe *menu.Recipe) error {
	items, err := s.menuItemRepo.FindByRecipe(ctx, organizationID, recipe.ID)
	if err != nil {
		return err
	}
	for _, item := range items {
		changed, err := item.RecalculateCost(recipe)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}
		if err := s.menuItemRepo.Save(ctx, item); err != nil {
			return err
		}
		s.publish(ctx, menu.NewMenuItemCostChangedEvent(item))
		s.checkMargin(ctx, organizationID, item)
	}
	return nil
}

// ingredientCosts loads the weighted-average unit cost for each distinct
// ingredient used by the recipe
func (s *MenuService) ingredientCosts(ctx context.Context, organizationID uuid.UUID, recipe *menu.Recipe) (map[uuid.UUID]*decimal.Decimal, error) {
	costs := make(map[uuid.UUID]*decimal.Decimal, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		if _, ok := costs[line.IngredientID]; ok {
			continue
		}
		ing, err := s.ingredientRepo.FindByIDForOrg(ctx, organizationID, line.IngredientID)
		if err != nil {
			return nil, err
		}
		costs[line.IngredientID] = ing.AverageUnitCost
	}
	return costs, nil
}

// checkMargin emits a low-margin event when the org has a target margin
// threshold and the item's margin falls under it
func (s *MenuService) checkMargin(ctx context.Context, organizationID uuid.UUID, item *menu.MenuItem) {
	if s.eventPublisher == nil || item.Margin == nil {
		return
	}
	org, err := s.orgRepo.FindByID(ctx, organizationID)
	if err != nil {
		s.logger.Warn("failed to load organization for margin check",
			zap.String("organization_id", organizationID.String()),
			zap.Error(err))
		return
	}
	threshold := org.Settings.TargetMarginThreshold
	if threshold == nil {
		return
	}
	if item.IsMarginBelow(*threshold) {
		s.publish(ctx, menu.NewMenuItemLowMarginEvent(item, *threshold))
	}
}

func (s *MenuService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish domain event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}
