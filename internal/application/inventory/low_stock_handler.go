package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/resto/backend/internal/domain/inventory"
	"github.com/resto/backend/internal/domain/shared"
)

// LowStockNotifier sends reorder alerts. Implementations may target
// different channels (in-app, email, webhook).
type LowStockNotifier interface {
	Notify(ctx context.Context, alert LowStockAlertResponse) error
}

// LowStockHandler turns StockBelowThreshold events into notifications
type LowStockHandler struct {
	notifier LowStockNotifier
	logger   *zap.Logger
}

// NewLowStockHandler creates a handler for stock-below-threshold events
func NewLowStockHandler(notifier LowStockNotifier, logger *zap.Logger) *LowStockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowThreshold}
}

// Handle processes a StockBelowThresholdEvent
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	thresholdEvent, ok := event.(*inventory.StockBelowThresholdEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowThreshold, event.EventType())
	}

	h.logger.Warn("stock below reorder threshold",
		zap.String("organization_id", event.OrganizationID().String()),
		zap.String("ingredient_id", thresholdEvent.IngredientID.String()),
		zap.String("ingredient", thresholdEvent.IngredientName),
		zap.String("total_stock", thresholdEvent.TotalStock.String()),
		zap.String("threshold", thresholdEvent.ReorderThreshold.String()))

	if h.notifier == nil {
		return nil
	}
	alert := LowStockAlertResponse{
		IngredientID:     thresholdEvent.IngredientID,
		Name:             thresholdEvent.IngredientName,
		TotalStock:       thresholdEvent.TotalStock,
		ReorderThreshold: thresholdEvent.ReorderThreshold,
	}
	if err := h.notifier.Notify(ctx, alert); err != nil {
		// Notification failure must not fail event handling
		h.logger.Error("failed to send low stock notification",
			zap.String("ingredient_id", alert.IngredientID.String()),
			zap.Error(err))
	}
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)

// LoggingLowStockNotifier logs alerts; used in development and tests
type LoggingLowStockNotifier struct {
	logger *zap.Logger
}

// NewLoggingLowStockNotifier creates a logging notifier
func NewLoggingLowStockNotifier(logger *zap.Logger) *LoggingLowStockNotifier {
	return &LoggingLowStockNotifier{logger: logger}
}

// Notify logs the alert
func (n *LoggingLowStockNotifier) Notify(_ context.Context, alert LowStockAlertResponse) error {
	n.logger.Warn("LOW STOCK",
		zap.String("ingredient_id", alert.IngredientID.String()),
		zap.String("ingredient", alert.Name),
		zap.String("total_stock", alert.TotalStock.String()),
		zap.String("threshold", alert.ReorderThreshold.String()))
	return nil
}

var _ LowStockNotifier = (*LoggingLowStockNotifier)(nil)
