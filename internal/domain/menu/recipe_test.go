package menu

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewRecipe_Validation(t *testing.T) {
	_, err := NewRecipe(uuid.Nil, "Dough", dec("5"))
	assert.Error(t, err)
	_, err = NewRecipe(uuid.New(), " ", dec("5"))
	assert.Error(t, err)
	_, err = NewRecipe(uuid.New(), "Dough", dec("0"))
	assert.Error(t, err)
}

func TestRecipe_RecalculateTotalCost(t *testing.T) {
	recipe, err := NewRecipe(uuid.New(), "Dough", dec("5"))
	require.NoError(t, err)

	flour, water := uuid.New(), uuid.New()
	require.NoError(t, recipe.AddIngredient(flour, dec("2")))
	require.NoError(t, recipe.AddIngredient(water, dec("10")))

	flourCost := dec("1.6667")
	waterCost := dec("0.10")
	changed := recipe.RecalculateTotalCost(map[uuid.UUID]*decimal.Decimal{
		flour: &flourCost,
		water: &waterCost,
	})
	require.True(t, changed)
	// 2*1.6667 + 10*0.10 = 3.3334 + 1.00
	assert.True(t, recipe.TotalCost.Equal(dec("4.3334")), "got %s", recipe.TotalCost)
	assert.True(t, recipe.Ingredients[0].LineCost.Equal(dec("3.3334")))

	// Same costs again: no change reported
	changed = recipe.RecalculateTotalCost(map[uuid.UUID]*decimal.Decimal{
		flour: &flourCost,
		water: &waterCost,
	})
	assert.False(t, changed)
}

func TestRecipe_RecalculateTotalCost_MissingCostPricesLineAtZero(t *testing.T) {
	recipe, err := NewRecipe(uuid.New(), "Dough", dec("1"))
	require.NoError(t, err)
	require.NoError(t, recipe.AddIngredient(uuid.New(), dec("3")))

	changed := recipe.RecalculateTotalCost(map[uuid.UUID]*decimal.Decimal{})
	assert.False(t, changed, "zero stays zero")
	assert.True(t, recipe.TotalCost.IsZero())
}

func TestRecipe_CostPerPortion(t *testing.T) {
	recipe, err := NewRecipe(uuid.New(), "Soup", dec("5"))
	require.NoError(t, err)
	recipe.TotalCost = dec("30.00")

	assert.True(t, recipe.CostPerPortion().Equal(dec("6.00")), "got %s", recipe.CostPerPortion())
}

func TestRecipe_AddIngredient_Validation(t *testing.T) {
	recipe, err := NewRecipe(uuid.New(), "Soup", dec("1"))
	require.NoError(t, err)

	assert.Error(t, recipe.AddIngredient(uuid.Nil, dec("1")))
	assert.Error(t, recipe.AddIngredient(uuid.New(), dec("0")))
}
