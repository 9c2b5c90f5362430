package event

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/shared"
)

type recordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	received   []shared.DomainEvent
	err        error
	panics     bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) Received() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.received...)
}

func newTestIngredient(t *testing.T) *inventory.Ingredient {
	t.Helper()
	ing, err := inventory.NewIngredient(uuid.New(), "Tomato", "kg")
	require.NoError(t, err)
	require.NoError(t, ing.ApplyPurchase(decimal.NewFromInt(10), decimal.NewFromInt(20)))
	return ing
}

func TestInMemoryEventBus_PublishAndSubscribe(t *testing.T) {
	t.Run("delivers event to subscribed handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{eventTypes: []string{inventory.EventTypeStockAdjusted}}
		bus.Subscribe(handler)

		ing := newTestIngredient(t)
		event := inventory.NewStockAdjustedEvent(ing, decimal.NewFromInt(-2), "spoilage")

		err := bus.Publish(context.Background(), event)

		require.NoError(t, err)
		received := handler.Received()
		require.Len(t, received, 1)
		assert.Equal(t, inventory.EventTypeStockAdjusted, received[0].EventType())
	})

	t.Run("does not deliver unrelated event types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{eventTypes: []string{inventory.EventTypeStockDeducted}}
		bus.Subscribe(handler)

		ing := newTestIngredient(t)
		err := bus.Publish(context.Background(), inventory.NewStockAdjustedEvent(ing, decimal.NewFromInt(1), "recount"))

		require.NoError(t, err)
		assert.Empty(t, handler.Received())
	})

	t.Run("wildcard handler receives all events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{}
		bus.Subscribe(handler)

		ing := newTestIngredient(t)
		err := bus.Publish(context.Background(),
			inventory.NewStockAdjustedEvent(ing, decimal.NewFromInt(1), "recount"),
			inventory.NewStockBelowThresholdEvent(ing),
		)

		require.NoError(t, err)
		assert.Len(t, handler.Received(), 2)
	})

	t.Run("handler error does not stop other handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{eventTypes: []string{inventory.EventTypeStockAdjusted}, err: assert.AnError}
		healthy := &recordingHandler{eventTypes: []string{inventory.EventTypeStockAdjusted}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		ing := newTestIngredient(t)
		err := bus.Publish(context.Background(), inventory.NewStockAdjustedEvent(ing, decimal.NewFromInt(1), "recount"))

		require.NoError(t, err)
		assert.Len(t, healthy.Received(), 1)
	})

	t.Run("recovers from panicking handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := &recordingHandler{eventTypes: []string{inventory.EventTypeStockAdjusted}, panics: true}
		healthy := &recordingHandler{eventTypes: []string{inventory.EventTypeStockAdjusted}}
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		ing := newTestIngredient(t)

		assert.NotPanics(t, func() {
			_ = bus.Publish(context.Background(), inventory.NewStockAdjustedEvent(ing, decimal.NewFromInt(1), "recount"))
		})
		assert.Len(t, healthy.Received(), 1)
	})

	t.Run("unsubscribed handler stops receiving", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{eventTypes: []string{inventory.EventTypeStockAdjusted}}
		bus.Subscribe(handler)
		bus.Unsubscribe(handler)

		ing := newTestIngredient(t)
		err := bus.Publish(context.Background(), inventory.NewStockAdjustedEvent(ing, decimal.NewFromInt(1), "recount"))

		require.NoError(t, err)
		assert.Empty(t, handler.Received())
	})
}

func TestInMemoryEventBus_Lifecycle(t *testing.T) {
	t.Run("starts and stops cleanly", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		require.NoError(t, bus.Start(context.Background()))
		require.NoError(t, bus.Stop(context.Background()))
	})

	t.Run("dispatch is synchronous regardless of lifecycle", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &recordingHandler{eventTypes: []string{inventory.EventTypeStockAdjusted}}
		bus.Subscribe(handler)

		require.NoError(t, bus.Stop(context.Background()))

		ing := newTestIngredient(t)
		err := bus.Publish(context.Background(), inventory.NewStockAdjustedEvent(ing, decimal.NewFromInt(1), "recount"))

		require.NoError(t, err)
		assert.Len(t, handler.Received(), 1)
	})
}
