package events

import (
	"context"
	"log/slog"
)

// NoopBus logs events without delivering them anywhere. Useful until a real
// broker is wired behind the EventBus port.
type NoopBus struct{}

// NewNoopBus returns a new no-op event publisher.
func NewNoopBus() *NoopBus {
	return &NoopBus{}
}

func (n *NoopBus) PublishOrderCreated(_ context.Context, orderID string) error {
	slog.Debug("event::order_created", "order_id", orderID)
	return nil
}

func (n *NoopBus) PublishOrderLineAdded(_ context.Context, orderID, sku string, quantity int) error {
	slog.Debug("event::order_line_added", "order_id", orderID, "sku", sku, "quantity", quantity)
	return nil
}
