package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/stock"
)

// LowStockAlertHandler logs a warning whenever availability drops under the
// replenishment threshold, giving operations a hook to act on
type LowStockAlertHandler struct {
	logger *zap.Logger
}

// NewLowStockAlertHandler creates a new LowStockAlertHandler
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{logger: logger}
}

// Handle processes a stock.below_threshold event
func (h *LowStockAlertHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	evt, ok := e.(*stock.StockBelowThresholdEvent)
	if !ok {
		return nil
	}
	h.logger.Warn("stock below replenishment threshold",
		zap.String("product_id", evt.ProductID.String()),
		zap.Int64("available", evt.Available),
		zap.Int64("threshold", evt.Threshold),
	)
	return nil
}

// EventTypes returns the event types this handler subscribes to
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{stock.EventTypeStockBelowThreshold}
}

// AuditLogHandler records every domain event at debug level. Subscribed as a
// wildcard handler.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger}
}

// Handle logs the event
func (h *AuditLogHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	h.logger.Debug("domain event",
		zap.String("event_type", e.EventType()),
		zap.String("aggregate_type", e.AggregateType()),
		zap.String("aggregate_id", e.AggregateID().String()),
		zap.Time("occurred_at", e.OccurredAt()),
	)
	return nil
}

// EventTypes returns an empty slice so the handler receives all events
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

var (
	_ shared.EventHandler = (*LowStockAlertHandler)(nil)
	_ shared.EventHandler = (*AuditLogHandler)(nil)
)
