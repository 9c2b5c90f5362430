package menu

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/shared"
)

// RecipeIngredient is one line of a recipe: how much of an ingredient the
// recipe consumes per yield
type RecipeIngredient struct {
	shared.BaseEntity
	RecipeID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	// LineCost is Quantity times the ingredient's average unit cost at the
	// last recalculation
	LineCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// Recipe describes how a batch of portions is produced: the ingredient lines
// consumed and the number of portions (YieldQuantity) they yield. TotalCost
// is the sum of line costs and is recomputed whenever ingredient costs move.
type Recipe struct {
	shared.OrgAggregateRoot
	Name          string          `gorm:"size:255;not null"`
	YieldQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;references:ID"`
}

// TableName returns the table name for GORM
func (Recipe) TableName() string {
	return "recipes"
}

// NewRecipe creates a recipe with no lines
func NewRecipe(organizationID uuid.UUID, name string, yieldQuantity decimal.Decimal) (*Recipe, error) {
	name = strings.TrimSpace(name)
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Recipe name cannot be empty")
	}
	if yieldQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_YIELD", "Yield quantity must be positive")
	}
	return &Recipe{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(organizationID),
		Name:             name,
		YieldQuantity:    yieldQuantity,
		TotalCost:        decimal.Zero,
		Ingredients:      make([]RecipeIngredient, 0),
	}, nil
}

// AddIngredient appends a line to the recipe
func (r *Recipe) AddIngredient(ingredientID uuid.UUID, quantity decimal.Decimal) error {
	if ingredientID == uuid.Nil {
		return shared.NewDomainError("INVALID_INGREDIENT", "Ingredient ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	r.Ingredients = append(r.Ingredients, RecipeIngredient{
		BaseEntity:   shared.NewBaseEntity(),
		RecipeID:     r.ID,
		IngredientID: ingredientID,
		Quantity:     quantity,
	})
	r.touch()
	return nil
}

// RecalculateTotalCost re-prices every line from the given ingredient average
// unit costs (keyed by ingredient ID; a missing or nil cost prices the line
// at zero) and returns true when TotalCost changed.
func (r *Recipe) RecalculateTotalCost(unitCosts map[uuid.UUID]*decimal.Decimal) bool {
	total := decimal.Zero
	for idx := range r.Ingredients {
		line := &r.Ingredients[idx]
		lineCost := decimal.Zero
		if cost, ok := unitCosts[line.IngredientID]; ok && cost != nil {
			lineCost = line.Quantity.Mul(*cost).Round(inventory.CostPrecision)
		}
		line.LineCost = lineCost
		total = total.Add(lineCost)
	}
	if total.Equal(r.TotalCost) {
		return false
	}
	r.TotalCost = total
	r.touch()
	return true
}

// CostPerPortion is TotalCost divided by YieldQuantity
func (r *Recipe) CostPerPortion() decimal.Decimal {
	if r.YieldQuantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return r.TotalCost.Div(r.YieldQuantity).Round(inventory.CostPrecision)
}

func (r *Recipe) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
