package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/sales/internal/events"
	"github.com/dejobratic/sales/internal/sales/ports"
	"github.com/dejobratic/sales/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *events.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *events.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderCreated(ctx context.Context, orderID string) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderCreated")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("event.type", "order.created"),
		attribute.String("topic", "order.created"),
	)

	start := time.Now()
	err := e.bus.PublishOrderCreated(ctx, orderID)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, "order.created", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}

func (e *ObservableEventBus) PublishOrderLineAdded(ctx context.Context, orderID, sku string, quantity int) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderLineAdded")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("event.type", "order.line_added"),
		attribute.String("topic", "order.line_added"),
		attribute.String("line.sku", sku),
		attribute.Int("line.quantity", quantity),
	)

	start := time.Now()
	err := e.bus.PublishOrderLineAdded(ctx, orderID, sku, quantity)
	duration := time.Since(start).Seconds()

	e.metrics.RecordPublish(ctx, "order.line_added", duration, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
