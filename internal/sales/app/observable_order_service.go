package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/dejobratic/sales/internal/sales/domain"
	"github.com/dejobratic/sales/internal/sales/metrics"
	"github.com/dejobratic/sales/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableOrderService decorates an OrderAPI with tracing, metrics, and
// structured logging. The wrapped service itself stays log-free.
type ObservableOrderService struct {
	next    OrderAPI
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableOrderService(next OrderAPI, logger *slog.Logger, metrics *metrics.Metrics) *ObservableOrderService {
	return &ObservableOrderService{
		next:    next,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableOrderService) CreateOrder(ctx context.Context, customerID string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordOrderCreationDuration(ctx, duration)
		o.metrics.RecordOrderCreated(ctx, success)
	}()

	o.logger.InfoContext(ctx, "creating order", "customer_id", customerID)

	order, err := o.next.CreateOrder(ctx, customerID)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to create order",
			"error", err,
			"customer_id", customerID,
		)
		return order, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID()),
		attribute.String("order.customer_id", customerID),
	)

	o.logger.InfoContext(ctx, "order created",
		"order_id", order.ID(),
		"customer_id", customerID,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, nil
}

func (o *ObservableOrderService) AddLine(ctx context.Context, orderID, sku string, quantity int) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderService.AddLine")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("line.sku", sku),
		attribute.Int("line.quantity", quantity),
	)

	order, err := o.next.AddLine(ctx, orderID, sku, quantity)
	o.metrics.RecordOrderLineAdded(ctx, sku, err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to add order line",
			"error", err,
			"order_id", orderID,
			"sku", sku,
			"quantity", quantity,
		)
		return order, err
	}

	o.logger.InfoContext(ctx, "order line added",
		"order_id", orderID,
		"sku", sku,
		"quantity", quantity,
		"total", order.Total(),
	)

	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (o *ObservableOrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	order, err := o.next.GetOrder(ctx, id)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return order, nil
}

func (o *ObservableOrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := o.next.ListOrders(ctx)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}

	telemetry.SetSpanSuccess(span)
	return orders, nil
}
