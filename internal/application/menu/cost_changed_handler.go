package menu

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/shared"
)

// IngredientCostChangedHandler reacts to ingredient cost changes by
// re-pricing the recipes that use the ingredient and cascading into the
// linked menu items' cost and margin.
type IngredientCostChangedHandler struct {
	menuService *MenuService
	logger      *zap.Logger
}

// NewIngredientCostChangedHandler creates the propagation handler
func NewIngredientCostChangedHandler(menuService *MenuService, logger *zap.Logger) *IngredientCostChangedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngredientCostChangedHandler{
		menuService: menuService,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *IngredientCostChangedHandler) EventTypes() []string {
	return []string{inventory.EventTypeIngredientCostChanged}
}

// Handle processes an IngredientCostChangedEvent
func (h *IngredientCostChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	costEvent, ok := event.(*inventory.IngredientCostChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeIngredientCostChanged, event.EventType())
	}

	h.logger.Info("propagating ingredient cost change",
		zap.String("organization_id", event.OrganizationID().String()),
		zap.String("ingredient_id", costEvent.IngredientID.String()))

	if err := h.menuService.PropagateIngredientCostChange(ctx, event.OrganizationID(), costEvent.IngredientID); err != nil {
		h.logger.Error("cost propagation failed",
			zap.String("ingredient_id", costEvent.IngredientID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

var _ shared.EventHandler = (*IngredientCostChangedHandler)(nil)
