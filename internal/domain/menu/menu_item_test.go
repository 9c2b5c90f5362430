package menu

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLinkedItem(t *testing.T, basePrice, yield, totalCost, multiplier string) (*MenuItem, *Recipe) {
	t.Helper()
	orgID := uuid.New()

	recipe, err := NewRecipe(orgID, "Soup of the Day", dec(yield))
	require.NoError(t, err)
	recipe.TotalCost = dec(totalCost)

	item, err := NewMenuItem(orgID, "Soup", dec(basePrice))
	require.NoError(t, err)
	require.NoError(t, item.LinkRecipe(recipe.ID, dec(multiplier)))
	return item, recipe
}

func TestMenuItem_RecalculateCost(t *testing.T) {
	// 30.00 across 5 portions at multiplier 1: cost 6.00, margin
	// (20-6)/20 = 0.70
	item, recipe := newLinkedItem(t, "20.00", "5", "30.00", "1")

	changed, err := item.RecalculateCost(recipe)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, item.ComputedCost)
	require.NotNil(t, item.Margin)
	assert.True(t, item.ComputedCost.Equal(dec("6.00")), "got %s", item.ComputedCost)
	assert.True(t, item.Margin.Equal(dec("0.70")), "got %s", item.Margin)

	// Unchanged inputs report no change
	changed, err = item.RecalculateCost(recipe)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestMenuItem_RecalculateCost_PortionMultiplier(t *testing.T) {
	item, recipe := newLinkedItem(t, "20.00", "5", "30.00", "1.5")

	_, err := item.RecalculateCost(recipe)
	require.NoError(t, err)
	assert.True(t, item.ComputedCost.Equal(dec("9.00")))
	assert.True(t, item.Margin.Equal(dec("0.55")))
}

func TestMenuItem_RecalculateCost_Errors(t *testing.T) {
	orgID := uuid.New()
	item, err := NewMenuItem(orgID, "Soup", dec("20"))
	require.NoError(t, err)

	_, err = item.RecalculateCost(nil)
	assert.Error(t, err, "no linked recipe")

	other, err := NewRecipe(orgID, "Other", dec("1"))
	require.NoError(t, err)
	require.NoError(t, item.LinkRecipe(uuid.New(), dec("1")))
	_, err = item.RecalculateCost(other)
	assert.Error(t, err, "recipe must match the link")
}

func TestMenuItem_SetBasePrice_RefreshesMargin(t *testing.T) {
	item, recipe := newLinkedItem(t, "20.00", "5", "30.00", "1")
	_, err := item.RecalculateCost(recipe)
	require.NoError(t, err)

	require.NoError(t, item.SetBasePrice(dec("12.00")))
	assert.True(t, item.Margin.Equal(dec("0.50")), "got %s", item.Margin)

	assert.Error(t, item.SetBasePrice(dec("0")))
}

func TestMenuItem_IsMarginBelow(t *testing.T) {
	item, recipe := newLinkedItem(t, "20.00", "5", "30.00", "1")
	assert.False(t, item.IsMarginBelow(dec("0.9")), "unknown margin never alerts")

	_, err := item.RecalculateCost(recipe)
	require.NoError(t, err)
	assert.True(t, item.IsMarginBelow(dec("0.75")))
	assert.False(t, item.IsMarginBelow(dec("0.70")), "threshold is exclusive")
}

func TestMenuItem_UnlinkRecipe(t *testing.T) {
	item, recipe := newLinkedItem(t, "20.00", "5", "30.00", "1")
	_, err := item.RecalculateCost(recipe)
	require.NoError(t, err)

	item.UnlinkRecipe()
	assert.Nil(t, item.RecipeID)
	assert.Nil(t, item.ComputedCost)
	assert.Nil(t, item.Margin)
}
