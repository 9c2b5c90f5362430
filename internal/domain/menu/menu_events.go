package menu

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto/backend/internal/domain/shared"
)

const (
	EventTypeRecipeCostRecalculated = "menu.recipe.cost_recalculated"
	EventTypeMenuItemCostChanged    = "menu.item.cost_changed"
	EventTypeMenuItemLowMargin      = "menu.item.low_margin"
)

const (
	AggregateTypeRecipe   = "Recipe"
	AggregateTypeMenuItem = "MenuItem"
)

// RecipeCostRecalculatedEvent fires when a recipe's total cost moved after
// re-pricing its lines
type RecipeCostRecalculatedEvent struct {
	shared.BaseDomainEvent
	RecipeID  uuid.UUID       `json:"recipe_id"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

func NewRecipeCostRecalculatedEvent(recipe *Recipe) *RecipeCostRecalculatedEvent {
	return &RecipeCostRecalculatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeRecipeCostRecalculated, AggregateTypeRecipe, recipe.ID, recipe.OrganizationID),
		RecipeID:  recipe.ID,
		TotalCost: recipe.TotalCost,
	}
}

// MenuItemCostChangedEvent fires when a menu item's computed cost or margin
// changed during recalculation
type MenuItemCostChangedEvent struct {
	shared.BaseDomainEvent
	MenuItemID   uuid.UUID       `json:"menu_item_id"`
	ComputedCost decimal.Decimal `json:"computed_cost"`
	Margin       decimal.Decimal `json:"margin"`
}

func NewMenuItemCostChangedEvent(item *MenuItem) *MenuItemCostChangedEvent {
	evt := &MenuItemCostChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeMenuItemCostChanged, AggregateTypeMenuItem, item.ID, item.OrganizationID),
		MenuItemID: item.ID,
	}
	if item.ComputedCost != nil {
		evt.ComputedCost = *item.ComputedCost
	}
	if item.Margin != nil {
		evt.Margin = *item.Margin
	}
	return evt
}

// MenuItemLowMarginEvent fires when a recalculated margin falls under the
// organization's target margin threshold
type MenuItemLowMarginEvent struct {
	shared.BaseDomainEvent
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Margin     decimal.Decimal `json:"margin"`
	Threshold  decimal.Decimal `json:"threshold"`
}

func NewMenuItemLowMarginEvent(item *MenuItem, threshold decimal.Decimal) *MenuItemLowMarginEvent {
	evt := &MenuItemLowMarginEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeMenuItemLowMargin, AggregateTypeMenuItem, item.ID, item.OrganizationID),
		MenuItemID: item.ID,
		Threshold:  threshold,
	}
	if item.Margin != nil {
		evt.Margin = *item.Margin
	}
	return evt
}
