package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/dejobratic/sales/internal/database"
	"github.com/dejobratic/sales/internal/sales/ports"
	"github.com/dejobratic/sales/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableRepository decorates any aggregate repository with tracing and
// query-duration metrics. The entity name labels spans and metrics so one
// decorator serves all three stores.
type ObservableRepository[T any, ID comparable] struct {
	next    ports.Repository[T, ID]
	entity  string
	metrics *database.Metrics
}

func NewObservableRepository[T any, ID comparable](
	next ports.Repository[T, ID],
	entity string,
	metrics *database.Metrics,
) *ObservableRepository[T, ID] {
	return &ObservableRepository[T, ID]{
		next:    next,
		entity:  entity,
		metrics: metrics,
	}
}

func (r *ObservableRepository[T, ID]) Save(ctx context.Context, entity *T) (*T, error) {
	return observe(ctx, r, "save", func(ctx context.Context) (*T, error) {
		return r.next.Save(ctx, entity)
	})
}

func (r *ObservableRepository[T, ID]) FindByID(ctx context.Context, id ID) (*T, error) {
	return observe(ctx, r, "find_by_id", func(ctx context.Context) (*T, error) {
		return r.next.FindByID(ctx, id)
	})
}

func (r *ObservableRepository[T, ID]) FindAll(ctx context.Context) ([]*T, error) {
	return observe(ctx, r, "find_all", func(ctx context.Context) ([]*T, error) {
		return r.next.FindAll(ctx)
	})
}

func (r *ObservableRepository[T, ID]) DeleteByID(ctx context.Context, id ID) error {
	_, err := observe(ctx, r, "delete_by_id", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.DeleteByID(ctx, id)
	})
	return err
}

func observe[T any, ID comparable, R any](
	ctx context.Context,
	r *ObservableRepository[T, ID],
	operation string,
	fn func(ctx context.Context) (R, error),
) (R, error) {
	ctx, span := telemetry.StartSpan(ctx, fmt.Sprintf("%sRepository.%s", r.entity, operation))
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("entity", r.entity),
		attribute.String("operation", operation),
	)

	start := time.Now()
	result, err := fn(ctx)
	duration := time.Since(start).Seconds()

	r.metrics.RecordQuery(ctx, operation, r.entity, duration)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return result, err
	}

	telemetry.SetSpanSuccess(span)
	return result, nil
}
