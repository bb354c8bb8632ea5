package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestStartSpan(t *testing.T) {
	t.Run("creates a span with the given name", func(t *testing.T) {
		exp := installInMemoryTracer(t)

		_, span := StartSpan(context.Background(), "test-operation")
		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if spans[0].Name != "test-operation" {
			t.Errorf("span name = %s, want test-operation", spans[0].Name)
		}
	})

	t.Run("nested spans share a trace", func(t *testing.T) {
		exp := installInMemoryTracer(t)

		ctx, parent := StartSpan(context.Background(), "parent")
		_, child := StartSpan(ctx, "child")
		child.End()
		parent.End()

		spans := exp.GetSpans()
		if len(spans) != 2 {
			t.Fatalf("expected 2 spans, got %d", len(spans))
		}
		if spans[0].SpanContext.TraceID() != spans[1].SpanContext.TraceID() {
			t.Error("child span does not share the parent's trace ID")
		}
		if spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
			t.Error("child span is not parented to the outer span")
		}
	})
}

func TestAddSpanAttributes(t *testing.T) {
	t.Run("adds attributes to the span", func(t *testing.T) {
		exp := installInMemoryTracer(t)

		_, span := StartSpan(context.Background(), "attributed")
		AddSpanAttributes(span,
			attribute.String("entity", "order"),
			attribute.Int("quantity", 3),
		)
		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}

		attrs := make(map[attribute.Key]attribute.Value)
		for _, kv := range spans[0].Attributes {
			attrs[kv.Key] = kv.Value
		}
		if got := attrs["entity"].AsString(); got != "order" {
			t.Errorf("entity attribute = %s, want order", got)
		}
		if got := attrs["quantity"].AsInt64(); got != 3 {
			t.Errorf("quantity attribute = %d, want 3", got)
		}
	})

	t.Run("tolerates a nil span", func(t *testing.T) {
		AddSpanAttributes(nil, attribute.String("k", "v"))
	})
}

func TestAddSpanEvent(t *testing.T) {
	t.Run("adds an event with attributes", func(t *testing.T) {
		exp := installInMemoryTracer(t)

		_, span := StartSpan(context.Background(), "with-event")
		AddSpanEvent(span, "line_added", attribute.String("sku", "sku-001"))
		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if len(spans[0].Events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(spans[0].Events))
		}
		if spans[0].Events[0].Name != "line_added" {
			t.Errorf("event name = %s, want line_added", spans[0].Events[0].Name)
		}
	})

	t.Run("tolerates a nil span", func(t *testing.T) {
		AddSpanEvent(nil, "ignored")
	})
}

func TestRecordSpanError(t *testing.T) {
	t.Run("records the error and marks the span", func(t *testing.T) {
		exp := installInMemoryTracer(t)

		_, span := StartSpan(context.Background(), "failing")
		RecordSpanError(span, errors.New("boom"))
		span.End()

		spans := exp.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if spans[0].Status.Code != codes.Error {
			t.Errorf("status = %v, want Error", spans[0].Status.Code)
		}
		if spans[0].Status.Description != "boom" {
			t.Errorf("status description = %s, want boom", spans[0].Status.Description)
		}
		if len(spans[0].Events) == 0 {
			t.Error("expected an exception event on the span")
		}
	})

	t.Run("tolerates nil span and nil error", func(t *testing.T) {
		RecordSpanError(nil, errors.New("boom"))

		exp := installInMemoryTracer(t)
		_, span := StartSpan(context.Background(), "clean")
		RecordSpanError(span, nil)
		span.End()

		spans := exp.GetSpans()
		if spans[0].Status.Code == codes.Error {
			t.Error("nil error must not mark the span failed")
		}
	})
}

func TestSetSpanSuccess(t *testing.T) {
	t.Run("marks the span OK", func(t *testing.T) {
		exp := installInMemoryTracer(t)

		_, span := StartSpan(context.Background(), "succeeding")
		SetSpanSuccess(span)
		span.End()

		spans := exp.GetSpans()
		if spans[0].Status.Code != codes.Ok {
			t.Errorf("status = %v, want Ok", spans[0].Status.Code)
		}
	})

	t.Run("tolerates a nil span", func(t *testing.T) {
		SetSpanSuccess(nil)
	})
}

func TestTraceAndSpanID(t *testing.T) {
	t.Run("extracts IDs from a context with an active span", func(t *testing.T) {
		installInMemoryTracer(t)

		ctx, span := StartSpan(context.Background(), "identified")
		defer span.End()

		if TraceID(ctx) == "" {
			t.Error("expected a trace ID")
		}
		if SpanID(ctx) == "" {
			t.Error("expected a span ID")
		}
	})

	t.Run("returns empty strings without a span", func(t *testing.T) {
		ctx := context.Background()
		if got := TraceID(ctx); got != "" {
			t.Errorf("TraceID() = %q, want empty", got)
		}
		if got := SpanID(ctx); got != "" {
			t.Errorf("SpanID() = %q, want empty", got)
		}
	})

	t.Run("nested spans share the trace ID but not the span ID", func(t *testing.T) {
		installInMemoryTracer(t)

		parentCtx, parent := StartSpan(context.Background(), "parent")
		childCtx, child := StartSpan(parentCtx, "child")
		defer parent.End()
		defer child.End()

		if TraceID(parentCtx) != TraceID(childCtx) {
			t.Error("nested spans must share a trace ID")
		}
		if SpanID(parentCtx) == SpanID(childCtx) {
			t.Error("nested spans must have distinct span IDs")
		}
	})
}
