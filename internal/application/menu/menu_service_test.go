package menu

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/resto/backend/internal/domain/identity"
	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/menu"
	"github.com/resto/backend/internal/domain/shared"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MockEventPublisher collects published events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockRecipeRepository is a mock implementation of RecipeRepository
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*menu.Recipe, error) {
	args := m.Called(ctx, id, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*menu.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]*menu.Recipe, error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).([]*menu.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecipeRepository) FindByIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID) ([]*menu.Recipe, error) {
	args := m.Called(ctx, organizationID, ingredientID)
	return args.Get(0).([]*menu.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *menu.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

func (m *MockRecipeRepository) Save(ctx context.Context, recipe *menu.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

// MockMenuItemRepository is a mock implementation of MenuItemRepository
type MockMenuItemRepository struct {
	mock.Mock
}

func (m *MockMenuItemRepository) FindByIDForOrg(ctx context.Context, id, organizationID uuid.UUID) (*menu.MenuItem, error) {
	args := m.Called(ctx, id, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*menu.MenuItem), args.Error(1)
}

func (m *MockMenuItemRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]*menu.MenuItem, error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).([]*menu.MenuItem), args.Error(1)
}

func (m *MockMenuItemRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMenuItemRepository) FindByRecipe(ctx context.Context, organizationID, recipeID uuid.UUID) ([]*menu.MenuItem, error) {
	args := m.Called(ctx, organizationID, recipeID)
	return args.Get(0).([]*menu.MenuItem), args.Error(1)
}

func (m *MockMenuItemRepository) Create(ctx context.Context, item *menu.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockMenuItemRepository) Save(ctx context.Context, item *menu.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockIngredientRepository mocks the ingredient reads the menu service needs
type MockIngredientRepository struct {
	mock.Mock
}

func (m *MockIngredientRepository) FindByIDForOrg(ctx context.Context, organizationID, id uuid.UUID) (*inventory.Ingredient, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Ingredient), args.Error(1)
}

func (m *MockIngredientRepository) FindByIDForOrgLocked(ctx context.Context, organizationID, id uuid.UUID) (*inventory.Ingredient, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Ingredient), args.Error(1)
}

func (m *MockIngredientRepository) FindAllForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]inventory.Ingredient, error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).([]inventory.Ingredient), args.Error(1)
}

func (m *MockIngredientRepository) CountForOrg(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIngredientRepository) FindBelowReorderThreshold(ctx context.Context, organizationID uuid.UUID) ([]inventory.Ingredient, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).([]inventory.Ingredient), args.Error(1)
}

func (m *MockIngredientRepository) Create(ctx context.Context, ing *inventory.Ingredient) error {
	args := m.Called(ctx, ing)
	return args.Error(0)
}

func (m *MockIngredientRepository) Save(ctx context.Context, ing *inventory.Ingredient) error {
	args := m.Called(ctx, ing)
	return args.Error(0)
}

func (m *MockIngredientRepository) SaveWithLock(ctx context.Context, ing *inventory.Ingredient) error {
	args := m.Called(ctx, ing)
	return args.Error(0)
}

// MockOrganizationRepository is a mock implementation of OrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindBySlug(ctx context.Context, slug string) (*identity.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) Save(ctx context.Context, org *identity.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

type menuFixture struct {
	service        *MenuService
	recipes        *MockRecipeRepository
	items          *MockMenuItemRepository
	ingredients    *MockIngredientRepository
	orgs           *MockOrganizationRepository
	publisher      *MockEventPublisher
	organizationID uuid.UUID
}

func newMenuFixture() *menuFixture {
	recipes := new(MockRecipeRepository)
	items := new(MockMenuItemRepository)
	ingredients := new(MockIngredientRepository)
	orgs := new(MockOrganizationRepository)
	publisher := &MockEventPublisher{}

	service := NewMenuService(recipes, items, ingredients, orgs, nil)
	service.SetEventPublisher(publisher)

	return &menuFixture{
		service:        service,
		recipes:        recipes,
		items:          items,
		ingredients:    ingredients,
		orgs:           orgs,
		publisher:      publisher,
		organizationID: uuid.New(),
	}
}

func (f *menuFixture) ingredientWithAvgCost(t *testing.T, cost string) *inventory.Ingredient {
	t.Helper()
	ing, err := inventory.NewIngredient(f.organizationID, "Flour", "kg")
	require.NoError(t, err)
	avg := dec(cost)
	ing.AverageUnitCost = &avg
	return ing
}

func TestMenuService_CreateRecipe_PricesLines(t *testing.T) {
	f := newMenuFixture()
	ctx := context.Background()

	flour := f.ingredientWithAvgCost(t, "1.6667")
	f.ingredients.On("FindByIDForOrg", ctx, f.organizationID, flour.ID).Return(flour, nil)
	f.recipes.On("Create", ctx, mock.AnythingOfType("*menu.Recipe")).Return(nil)

	resp, err := f.service.CreateRecipe(ctx, f.organizationID, CreateRecipeRequest{
		Name:          "Dough",
		YieldQuantity: dec("4"),
		Lines: []RecipeLineRequest{
			{IngredientID: flour.ID, Quantity: dec("2")},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.TotalCost.Equal(dec("3.3334")), "got %s", resp.TotalCost)
	require.Len(t, resp.Lines, 1)
	assert.True(t, resp.Lines[0].LineCost.Equal(dec("3.3334")))
	f.recipes.AssertExpectations(t)
}

func TestMenuService_RecalculateMenuItemCost(t *testing.T) {
	f := newMenuFixture()
	ctx := context.Background()

	recipe, err := menu.NewRecipe(f.organizationID, "Soup", dec("5"))
	require.NoError(t, err)
	recipe.TotalCost = dec("30.00")

	item, err := menu.NewMenuItem(f.organizationID, "Soup", dec("20.00"))
	require.NoError(t, err)
	require.NoError(t, item.LinkRecipe(recipe.ID, dec("1")))

	org, err := identity.NewOrganization("Cafe", "cafe")
	require.NoError(t, err)

	f.items.On("FindByIDForOrg", ctx, item.ID, f.organizationID).Return(item, nil)
	f.recipes.On("FindByIDForOrg", ctx, recipe.ID, f.organizationID).Return(recipe, nil)
	f.items.On("Save", ctx, item).Return(nil)
	f.orgs.On("FindByID", ctx, f.organizationID).Return(org, nil)

	resp, err := f.service.RecalculateMenuItemCost(ctx, f.organizationID, item.ID)
	require.NoError(t, err)

	require.NotNil(t, resp.ComputedCost)
	assert.True(t, resp.ComputedCost.Equal(dec("6.00")), "got %s", resp.ComputedCost)
	require.NotNil(t, resp.Margin)
	assert.True(t, resp.Margin.Equal(dec("0.70")), "got %s", resp.Margin)
	assert.Len(t, f.publisher.GetEventsByType(menu.EventTypeMenuItemCostChanged), 1)
	assert.Empty(t, f.publisher.GetEventsByType(menu.EventTypeMenuItemLowMargin),
		"no threshold configured, no alert")
}

func TestMenuService_RecalculateMenuItemCost_LowMargin(t *testing.T) {
	f := newMenuFixture()
	ctx := context.Background()

	recipe, err := menu.NewRecipe(f.organizationID, "Soup", dec("5"))
	require.NoError(t, err)
	recipe.TotalCost = dec("30.00")

	item, err := menu.NewMenuItem(f.organizationID, "Soup", dec("20.00"))
	require.NoError(t, err)
	require.NoError(t, item.LinkRecipe(recipe.ID, dec("1")))

	org, err := identity.NewOrganization("Cafe", "cafe")
	require.NoError(t, err)
	require.NoError(t, org.SetTargetMarginThreshold(dec("0.75")))

	f.items.On("FindByIDForOrg", ctx, item.ID, f.organizationID).Return(item, nil)
	f.recipes.On("FindByIDForOrg", ctx, recipe.ID, f.organizationID).Return(recipe, nil)
	f.items.On("Save", ctx, item).Return(nil)
	f.orgs.On("FindByID", ctx, f.organizationID).Return(org, nil)

	_, err = f.service.RecalculateMenuItemCost(ctx, f.organizationID, item.ID)
	require.NoError(t, err)

	alerts := f.publisher.GetEventsByType(menu.EventTypeMenuItemLowMargin)
	require.Len(t, alerts, 1)
	lowMargin := alerts[0].(*menu.MenuItemLowMarginEvent)
	assert.True(t, lowMargin.Margin.Equal(dec("0.70")))
	assert.True(t, lowMargin.Threshold.Equal(dec("0.75")))
}

func TestMenuService_PropagateIngredientCostChange(t *testing.T) {
	f := newMenuFixture()
	ctx := context.Background()

	flour := f.ingredientWithAvgCost(t, "2.00")

	recipe, err := menu.NewRecipe(f.organizationID, "Dough", dec("4"))
	require.NoError(t, err)
	require.NoError(t, recipe.AddIngredient(flour.ID, dec("2")))

	item, err := menu.NewMenuItem(f.organizationID, "Bread", dec("10.00"))
	require.NoError(t, err)
	require.NoError(t, item.LinkRecipe(recipe.ID, dec("1")))

	org, err := identity.NewOrganization("Cafe", "cafe")
	require.NoError(t, err)

	f.recipes.On("FindByIngredient", ctx, f.organizationID, flour.ID).Return([]*menu.Recipe{recipe}, nil)
	f.ingredients.On("FindByIDForOrg", ctx, f.organizationID, flour.ID).Return(flour, nil)
	f.recipes.On("Save", ctx, recipe).Return(nil)
	f.items.On("FindByRecipe", ctx, f.organizationID, recipe.ID).Return([]*menu.MenuItem{item}, nil)
	f.items.On("Save", ctx, item).Return(nil)
	f.orgs.On("FindByID", ctx, f.organizationID).Return(org, nil)

	require.NoError(t, f.service.PropagateIngredientCostChange(ctx, f.organizationID, flour.ID))

	// Recipe: 2 kg @ 2.00 = 4.00; item: 4.00/4 portions = 1.00
	assert.True(t, recipe.TotalCost.Equal(dec("4.00")))
	require.NotNil(t, item.ComputedCost)
	assert.True(t, item.ComputedCost.Equal(dec("1.00")))
	require.NotNil(t, item.Margin)
	assert.True(t, item.Margin.Equal(dec("0.90")))

	assert.Len(t, f.publisher.GetEventsByType(menu.EventTypeRecipeCostRecalculated), 1)
	assert.Len(t, f.publisher.GetEventsByType(menu.EventTypeMenuItemCostChanged), 1)
}

func TestMenuService_PropagateIngredientCostChange_NoChangeNoWrites(t *testing.T) {
	f := newMenuFixture()
	ctx := context.Background()

	flour := f.ingredientWithAvgCost(t, "2.00")

	recipe, err := menu.NewRecipe(f.organizationID, "Dough", dec("4"))
	require.NoError(t, err)
	require.NoError(t, recipe.AddIngredient(flour.ID, dec("2")))
	avg := dec("2.00")
	recipe.RecalculateTotalCost(map[uuid.UUID]*decimal.Decimal{flour.ID: &avg})

	f.recipes.On("FindByIngredient", ctx, f.organizationID, flour.ID).Return([]*menu.Recipe{recipe}, nil)
	f.ingredients.On("FindByIDForOrg", ctx, f.organizationID, flour.ID).Return(flour, nil)

	require.NoError(t, f.service.PropagateIngredientCostChange(ctx, f.organizationID, flour.ID))
	f.recipes.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.items.AssertNotCalled(t, "FindByRecipe", mock.Anything, mock.Anything, mock.Anything)
}
