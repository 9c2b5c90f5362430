package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventoryapp "github.com/resto/backend/internal/application/inventory"
	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/interfaces/http/dto"
)

// In-memory repository fakes shared by the handler tests in this package.

type fakeIngredientRepository struct {
	items     map[uuid.UUID]*inventory.Ingredient
	returnErr error
}

func newFakeIngredientRepository() *fakeIngredientRepository {
	return &fakeIngredientRepository{items: make(map[uuid.UUID]*inventory.Ingredient)}
}

func (f *fakeIngredientRepository) FindByIDForOrg(_ context.Context, organizationID, id uuid.UUID) (*inventory.Ingredient, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	if ing, ok := f.items[id]; ok && ing.OrganizationID == organizationID {
		return ing, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeIngredientRepository) FindByIDForOrgLocked(ctx context.Context, organizationID, id uuid.UUID) (*inventory.Ingredient, error) {
	return f.FindByIDForOrg(ctx, organizationID, id)
}

func (f *fakeIngredientRepository) FindAllForOrg(_ context.Context, organizationID uuid.UUID, _ shared.Filter) ([]inventory.Ingredient, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	var result []inventory.Ingredient
	for _, ing := range f.items {
		if ing.OrganizationID == organizationID {
			result = append(result, *ing)
		}
	}
	return result, nil
}

func (f *fakeIngredientRepository) CountForOrg(_ context.Context, organizationID uuid.UUID, _ shared.Filter) (int64, error) {
	var count int64
	for _, ing := range f.items {
		if ing.OrganizationID == organizationID {
			count++
		}
	}
	return count, nil
}

func (f *fakeIngredientRepository) FindBelowReorderThreshold(_ context.Context, organizationID uuid.UUID) ([]inventory.Ingredient, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	var result []inventory.Ingredient
	for _, ing := range f.items {
		if ing.OrganizationID == organizationID && ing.Active && ing.IsBelowReorderThreshold() {
			result = append(result, *ing)
		}
	}
	return result, nil
}

func (f *fakeIngredientRepository) Create(_ context.Context, ing *inventory.Ingredient) error {
	if f.returnErr != nil {
		return f.returnErr
	}
	f.items[ing.ID] = ing
	return nil
}

func (f *fakeIngredientRepository) Save(_ context.Context, ing *inventory.Ingredient) error {
	if f.returnErr != nil {
		return f.returnErr
	}
	f.items[ing.ID] = ing
	return nil
}

func (f *fakeIngredientRepository) SaveWithLock(ctx context.Context, ing *inventory.Ingredient) error {
	return f.Save(ctx, ing)
}

type fakeBatchRepository struct {
	batches map[uuid.UUID]*inventory.IngredientBatch
}

func newFakeBatchRepository() *fakeBatchRepository {
	return &fakeBatchRepository{batches: make(map[uuid.UUID]*inventory.IngredientBatch)}
}

func (f *fakeBatchRepository) Create(_ context.Context, batch *inventory.IngredientBatch) error {
	f.batches[batch.ID] = batch
	return nil
}

func (f *fakeBatchRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.IngredientBatch, error) {
	if batch, ok := f.batches[id]; ok {
		return batch, nil
	}
	return nil, shared.ErrNotFound
}

// open returns the open batches in FIFO order, matching the SQL repository's
// created_at ASC, id ASC ordering.
func (f *fakeBatchRepository) open(ingredientID uuid.UUID) []inventory.IngredientBatch {
	var result []inventory.IngredientBatch
	for _, batch := range f.batches {
		if batch.IngredientID == ingredientID && batch.IsOpen() {
			result = append(result, *batch)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID.String() < result[j].ID.String()
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (f *fakeBatchRepository) FindOpenByIngredient(_ context.Context, ingredientID uuid.UUID) ([]inventory.IngredientBatch, error) {
	return f.open(ingredientID), nil
}

func (f *fakeBatchRepository) FindOpenByIngredientLocked(_ context.Context, ingredientID uuid.UUID) ([]inventory.IngredientBatch, error) {
	return f.open(ingredientID), nil
}

func (f *fakeBatchRepository) FindByIngredient(_ context.Context, ingredientID uuid.UUID, _ shared.Filter) ([]inventory.IngredientBatch, error) {
	var result []inventory.IngredientBatch
	for _, batch := range f.batches {
		if batch.IngredientID == ingredientID {
			result = append(result, *batch)
		}
	}
	return result, nil
}

func (f *fakeBatchRepository) Update(_ context.Context, batch *inventory.IngredientBatch) error {
	f.batches[batch.ID] = batch
	return nil
}

func (f *fakeBatchRepository) CloseDrained(_ context.Context, ingredientID uuid.UUID) (int64, error) {
	var closed int64
	for _, batch := range f.batches {
		if batch.IngredientID == ingredientID && !batch.Closed && batch.RemainingQty.Sign() <= 0 {
			batch.Closed = true
			closed++
		}
	}
	return closed, nil
}

type fakeStockEntryRepository struct {
	entries []inventory.StockEntry
}

func (f *fakeStockEntryRepository) Create(_ context.Context, entry *inventory.StockEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeStockEntryRepository) FindByIngredient(_ context.Context, organizationID, ingredientID uuid.UUID, _ shared.Filter) ([]inventory.StockEntry, error) {
	var result []inventory.StockEntry
	for _, entry := range f.entries {
		if entry.OrganizationID == organizationID && entry.IngredientID == ingredientID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeStockEntryRepository) CountByIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID) (int64, error) {
	entries, _ := f.FindByIngredient(ctx, organizationID, ingredientID, shared.DefaultFilter())
	return int64(len(entries)), nil
}

type fakeStockDeductionRepository struct {
	deductions []inventory.StockDeduction
}

func (f *fakeStockDeductionRepository) CreateAll(_ context.Context, deductions []inventory.StockDeduction) error {
	f.deductions = append(f.deductions, deductions...)
	return nil
}

func (f *fakeStockDeductionRepository) FindByIngredient(_ context.Context, organizationID, ingredientID uuid.UUID, _ shared.Filter) ([]inventory.StockDeduction, error) {
	var result []inventory.StockDeduction
	for _, d := range f.deductions {
		if d.OrganizationID == organizationID && d.IngredientID == ingredientID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (f *fakeStockDeductionRepository) FindByOrder(_ context.Context, organizationID, orderID uuid.UUID) ([]inventory.StockDeduction, error) {
	var result []inventory.StockDeduction
	for _, d := range f.deductions {
		if d.OrganizationID == organizationID && d.OrderID != nil && *d.OrderID == orderID {
			result = append(result, d)
		}
	}
	return result, nil
}

// fakeReadCache is a map-backed IngredientReadCache
type fakeReadCache struct {
	entries map[string][]byte
	gets    int
	sets    int
}

func newFakeReadCache() *fakeReadCache {
	return &fakeReadCache{entries: make(map[string][]byte)}
}

func cacheKey(organizationID, ingredientID uuid.UUID) string {
	return organizationID.String() + ":" + ingredientID.String()
}

func (f *fakeReadCache) GetIngredient(_ context.Context, organizationID, ingredientID uuid.UUID) ([]byte, bool, error) {
	f.gets++
	payload, ok := f.entries[cacheKey(organizationID, ingredientID)]
	return payload, ok, nil
}

func (f *fakeReadCache) SetIngredient(_ context.Context, organizationID, ingredientID uuid.UUID, payload []byte) error {
	f.sets++
	f.entries[cacheKey(organizationID, ingredientID)] = payload
	return nil
}

type handlerFixture struct {
	ingredients    *fakeIngredientRepository
	batches        *fakeBatchRepository
	entries        *fakeStockEntryRepository
	deductions     *fakeStockDeductionRepository
	stockService   *inventoryapp.StockService
	organizationID uuid.UUID
}

func newHandlerFixture() *handlerFixture {
	gin.SetMode(gin.TestMode)

	ingredients := newFakeIngredientRepository()
	batches := newFakeBatchRepository()
	entries := &fakeStockEntryRepository{}
	deductions := &fakeStockDeductionRepository{}

	scope := inventoryapp.NewNoOpTransactionScope(ingredients, batches, entries, deductions)
	service := inventoryapp.NewStockService(ingredients, batches, entries, scope, nil)

	return &handlerFixture{
		ingredients:    ingredients,
		batches:        batches,
		entries:        entries,
		deductions:     deductions,
		stockService:   service,
		organizationID: uuid.New(),
	}
}

func (f *handlerFixture) newIngredient(t *testing.T, name string) *inventory.Ingredient {
	t.Helper()
	ing, err := inventory.NewIngredient(f.organizationID, name, "kg")
	require.NoError(t, err)
	f.ingredients.items[ing.ID] = ing
	return ing
}

func testContext(t *testing.T, method, target string, body any, organizationID uuid.UUID) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, target, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Organization-ID", organizationID.String())
	c.Request = req
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestIngredientHandler_Create(t *testing.T) {
	f := newHandlerFixture()
	h := NewIngredientHandler(f.stockService, nil)

	c, w := testContext(t, http.MethodPost, "/inventory/ingredients", gin.H{
		"name": "Tomatoes",
		"unit": "kg",
	}, f.organizationID)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Tomatoes", data["name"])
	assert.Equal(t, "0", data["total_stock"])
}

func TestIngredientHandler_Create_EmptyName(t *testing.T) {
	f := newHandlerFixture()
	h := NewIngredientHandler(f.stockService, nil)

	c, w := testContext(t, http.MethodPost, "/inventory/ingredients", gin.H{
		"name": "  ",
		"unit": "kg",
	}, f.organizationID)

	h.Create(c)

	// Binding accepts whitespace, the aggregate does not
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngredientHandler_GetByID(t *testing.T) {
	f := newHandlerFixture()
	h := NewIngredientHandler(f.stockService, nil)
	ing := f.newIngredient(t, "Flour")

	c, w := testContext(t, http.MethodGet, "/inventory/ingredients/"+ing.ID.String(), nil, f.organizationID)
	c.Params = gin.Params{{Key: "id", Value: ing.ID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestIngredientHandler_GetByID_NotFound(t *testing.T) {
	f := newHandlerFixture()
	h := NewIngredientHandler(f.stockService, nil)

	c, w := testContext(t, http.MethodGet, "/inventory/ingredients/"+uuid.NewString(), nil, f.organizationID)
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestIngredientHandler_GetByID_InvalidID(t *testing.T) {
	f := newHandlerFixture()
	h := NewIngredientHandler(f.stockService, nil)

	c, w := testContext(t, http.MethodGet, "/inventory/ingredients/not-a-uuid", nil, f.organizationID)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngredientHandler_GetByID_OtherOrg(t *testing.T) {
	f := newHandlerFixture()
	h := NewIngredientHandler(f.stockService, nil)
	ing := f.newIngredient(t, "Flour")

	c, w := testContext(t, http.MethodGet, "/inventory/ingredients/"+ing.ID.String(), nil, uuid.New())
	c.Params = gin.Params{{Key: "id", Value: ing.ID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngredientHandler_GetByID_ServedFromCache(t *testing.T) {
	f := newHandlerFixture()
	cache := newFakeReadCache()
	h := NewIngredientHandler(f.stockService, cache)
	ing := f.newIngredient(t, "Flour")

	cached := inventoryapp.ToIngredientResponse(ing)
	payload, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, cache.SetIngredient(context.Background(), f.organizationID, ing.ID, payload))
	cache.sets = 0

	// The repository would error if consulted
	f.ingredients.returnErr = shared.ErrConsistencyViolation

	c, w := testContext(t, http.MethodGet, "/inventory/ingredients/"+ing.ID.String(), nil, f.organizationID)
	c.Params = gin.Params{{Key: "id", Value: ing.ID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, cache.gets)
	assert.Zero(t, cache.sets)
}

func TestIngredientHandler_GetByID_PopulatesCacheOnMiss(t *testing.T) {
	f := newHandlerFixture()
	cache := newFakeReadCache()
	h := NewIngredientHandler(f.stockService, cache)
	ing := f.newIngredient(t, "Flour")

	c, w := testContext(t, http.MethodGet, "/inventory/ingredients/"+ing.ID.String(), nil, f.organizationID)
	c.Params = gin.Params{{Key: "id", Value: ing.ID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, cache.sets)

	_, hit, err := cache.GetIngredient(context.Background(), f.organizationID, ing.ID)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestIngredientHandler_List(t *testing.T) {
	f := newHandlerFixture()
	h := NewIngredientHandler(f.stockService, nil)
	f.newIngredient(t, "Flour")
	f.newIngredient(t, "Tomatoes")
	f.newIngredient(t, "Basil")

	c, w := testContext(t, http.MethodGet, "/inventory/ingredients?page=1&page_size=20", nil, f.organizationID)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(3), resp.Meta.Total)
}

func TestIngredientHandler_LowStockAlerts(t *testing.T) {
	f := newHandlerFixture()
	h := NewIngredientHandler(f.stockService, nil)

	ing := f.newIngredient(t, "Saffron")
	require.NoError(t, ing.ApplyPurchase(decimal.NewFromInt(2), decimal.NewFromInt(20)))
	require.NoError(t, ing.SetReorderThreshold(decimal.NewFromInt(5)))

	c, w := testContext(t, http.MethodGet, "/inventory/ingredients/alerts/low-stock", nil, f.organizationID)

	h.LowStockAlerts(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	alerts := resp.Data.([]interface{})
	require.Len(t, alerts, 1)
	alert := alerts[0].(map[string]interface{})
	assert.Equal(t, "Saffron", alert["name"])
}

func TestIngredientHandler_Deactivate(t *testing.T) {
	f := newHandlerFixture()
	h := NewIngredientHandler(f.stockService, nil)
	ing := f.newIngredient(t, "Flour")

	c, _ := testContext(t, http.MethodDelete, "/inventory/ingredients/"+ing.ID.String(), nil, f.organizationID)
	c.Params = gin.Params{{Key: "id", Value: ing.ID.String()}}

	h.Deactivate(c)

	// c.Status alone never flushes to the recorder; the status lives on the
	// gin writer until a write happens.
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.False(t, f.ingredients.items[ing.ID].Active)
}

func TestIngredientHandler_MissingOrganization(t *testing.T) {
	f := newHandlerFixture()
	h := NewIngredientHandler(f.stockService, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/inventory/ingredients", nil)

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
