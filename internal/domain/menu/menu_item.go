package menu

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/shared"
)

// MenuItem is a sellable item. When linked to a recipe its food cost is
// derived from the recipe: one portion of the recipe scaled by
// PortionMultiplier. ComputedCost and Margin are nil until the first
// recalculation.
type MenuItem struct {
	shared.OrgAggregateRoot
	Name              string          `gorm:"size:255;not null"`
	Category          string          `gorm:"size:100"`
	BasePrice         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PortionMultiplier decimal.Decimal `gorm:"type:decimal(9,4);not null;default:1"`
	RecipeID          *uuid.UUID      `gorm:"type:uuid;index"`
	// ComputedCost is the food cost of one sold unit, recipe cost per
	// portion times PortionMultiplier
	ComputedCost *decimal.Decimal `gorm:"type:decimal(18,4)"`
	// Margin is (BasePrice - ComputedCost) / BasePrice
	Margin *decimal.Decimal `gorm:"type:decimal(9,4)"`
	Active bool             `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (MenuItem) TableName() string {
	return "menu_items"
}

// NewMenuItem creates a menu item without a recipe link
func NewMenuItem(organizationID uuid.UUID, name string, basePrice decimal.Decimal) (*MenuItem, error) {
	name = strings.TrimSpace(name)
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Menu item name cannot be empty")
	}
	if basePrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Base price must be positive")
	}
	return &MenuItem{
		OrgAggregateRoot:  shared.NewOrgAggregateRoot(organizationID),
		Name:              name,
		BasePrice:         basePrice,
		PortionMultiplier: decimal.NewFromInt(1),
		Active:            true,
	}, nil
}

// LinkRecipe attaches a recipe; cost fields are cleared until the next
// recalculation runs against the recipe
func (m *MenuItem) LinkRecipe(recipeID uuid.UUID, portionMultiplier decimal.Decimal) error {
	if recipeID == uuid.Nil {
		return shared.NewDomainError("INVALID_RECIPE", "Recipe ID cannot be empty")
	}
	if portionMultiplier.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_MULTIPLIER", "Portion multiplier must be positive")
	}
	m.RecipeID = &recipeID
	m.PortionMultiplier = portionMultiplier
	m.ComputedCost = nil
	m.Margin = nil
	m.touch()
	return nil
}

// UnlinkRecipe detaches the recipe and clears derived cost fields
func (m *MenuItem) UnlinkRecipe() {
	m.RecipeID = nil
	m.ComputedCost = nil
	m.Margin = nil
	m.touch()
}

// SetBasePrice changes the selling price. Margin is refreshed in place when
// a computed cost is already present.
func (m *MenuItem) SetBasePrice(price decimal.Decimal) error {
	if price.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Base price must be positive")
	}
	m.BasePrice = price
	if m.ComputedCost != nil {
		margin := m.marginFor(*m.ComputedCost)
		m.Margin = &margin
	}
	m.touch()
	return nil
}

// RecalculateCost derives ComputedCost and Margin from the linked recipe and
// reports whether either value changed. Passing a recipe whose ID does not
// match the link is an error.
func (m *MenuItem) RecalculateCost(recipe *Recipe) (bool, error) {
	if m.RecipeID == nil {
		return false, shared.NewDomainError("NO_RECIPE", "Menu item has no linked recipe")
	}
	if recipe == nil || recipe.ID != *m.RecipeID {
		return false, shared.NewDomainError("RECIPE_MISMATCH", "Recipe does not match the linked recipe")
	}
	cost := recipe.CostPerPortion().Mul(m.PortionMultiplier).Round(inventory.CostPrecision)
	margin := m.marginFor(cost)
	changed := m.ComputedCost == nil || !m.ComputedCost.Equal(cost) ||
		m.Margin == nil || !m.Margin.Equal(margin)
	if changed {
		m.ComputedCost = &cost
		m.Margin = &margin
		m.touch()
	}
	return changed, nil
}

// IsMarginBelow reports whether the current margin is known and under the
// given threshold
func (m *MenuItem) IsMarginBelow(threshold decimal.Decimal) bool {
	return m.Margin != nil && m.Margin.LessThan(threshold)
}

// Deactivate removes the item from sale
func (m *MenuItem) Deactivate() {
	m.Active = false
	m.touch()
}

func (m *MenuItem) marginFor(cost decimal.Decimal) decimal.Decimal {
	if m.BasePrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return m.BasePrice.Sub(cost).Div(m.BasePrice).Round(inventory.CostPrecision)
}

func (m *MenuItem) touch() {
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}
