package menu

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto/backend/internal/domain/menu"
)

// RecipeLineRequest is one ingredient line in a recipe create request
type RecipeLineRequest struct {
	IngredientID uuid.UUID       `json:"ingredient_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
}

// CreateRecipeRequest represents a request to create a recipe
type CreateRecipeRequest struct {
	Name          string              `json:"name" binding:"required,min=1,max=255"`
	YieldQuantity decimal.Decimal     `json:"yield_quantity" binding:"required"`
	Lines         []RecipeLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// RecipeLineResponse is one priced ingredient line of a recipe
type RecipeLineResponse struct {
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	LineCost     decimal.Decimal `json:"line_cost"`
}

// RecipeResponse represents a recipe in API responses
type RecipeResponse struct {
	ID             uuid.UUID            `json:"id"`
	OrganizationID uuid.UUID            `json:"organization_id"`
	Name           string               `json:"name"`
	YieldQuantity  decimal.Decimal      `json:"yield_quantity"`
	TotalCost      decimal.Decimal      `json:"total_cost"`
	CostPerPortion decimal.Decimal      `json:"cost_per_portion"`
	Lines          []RecipeLineResponse `json:"lines"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// ToRecipeResponse maps a domain recipe to its response form
func ToRecipeResponse(r *menu.Recipe) RecipeResponse {
	lines := make([]RecipeLineResponse, len(r.Ingredients))
	for i, line := range r.Ingredients {
		lines[i] = RecipeLineResponse{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
			LineCost:     line.LineCost,
		}
	}
	return RecipeResponse{
		ID:             r.ID,
		OrganizationID: r.OrganizationID,
		Name:           r.Name,
		YieldQuantity:  r.YieldQuantity,
		TotalCost:      r.TotalCost,
		CostPerPortion: r.CostPerPortion(),
		Lines:          lines,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// ToRecipeResponses maps a slice of recipes
func ToRecipeResponses(recipes []*menu.Recipe) []RecipeResponse {
	responses := make([]RecipeResponse, len(recipes))
	for i, r := range recipes {
		responses[i] = ToRecipeResponse(r)
	}
	return responses
}

// CreateMenuItemRequest represents a request to create a menu item
type CreateMenuItemRequest struct {
	Name              string           `json:"name" binding:"required,min=1,max=255"`
	Category          string           `json:"category" binding:"omitempty,max=100"`
	BasePrice         decimal.Decimal  `json:"base_price" binding:"required"`
	RecipeID          *uuid.UUID       `json:"recipe_id"`
	PortionMultiplier *decimal.Decimal `json:"portion_multiplier"`
}

// UpdateMenuItemRequest represents a partial update to a menu item
type UpdateMenuItemRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=255"`
	BasePrice         *decimal.Decimal `json:"base_price"`
	RecipeID          *uuid.UUID       `json:"recipe_id"`
	PortionMultiplier *decimal.Decimal `json:"portion_multiplier"`
	UnlinkRecipe      bool             `json:"unlink_recipe"`
}

// MenuItemResponse represents a menu item in API responses
type MenuItemResponse struct {
	ID                uuid.UUID        `json:"id"`
	OrganizationID    uuid.UUID        `json:"organization_id"`
	Name              string           `json:"name"`
	Category          string           `json:"category,omitempty"`
	BasePrice         decimal.Decimal  `json:"base_price"`
	PortionMultiplier decimal.Decimal  `json:"portion_multiplier"`
	RecipeID          *uuid.UUID       `json:"recipe_id,omitempty"`
	ComputedCost      *decimal.Decimal `json:"computed_cost"`
	Margin            *decimal.Decimal `json:"margin"`
	Active            bool             `json:"active"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ToMenuItemResponse maps a domain menu item to its response form
func ToMenuItemResponse(m *menu.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:                m.ID,
		OrganizationID:    m.OrganizationID,
		Name:              m.Name,
		Category:          m.Category,
		BasePrice:         m.BasePrice,
		PortionMultiplier: m.PortionMultiplier,
		RecipeID:          m.RecipeID,
		ComputedCost:      m.ComputedCost,
		Margin:            m.Margin,
		Active:            m.Active,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// ToMenuItemResponses maps a slice of menu items
func ToMenuItemResponses(items []*menu.MenuItem) []MenuItemResponse {
	responses := make([]MenuItemResponse, len(items))
	for i, item := range items {
		responses[i] = ToMenuItemResponse(item)
	}
	return responses
}
