package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/wachiwi/camera-preview"

// DegradationCounter counts best-effort camera steps that did not apply,
// by operation. It satisfies preview.Observer.
type DegradationCounter struct {
	counter metric.Int64Counter
}

// NewDegradationCounter registers the counter on mp; the global meter
// provider when mp is nil.
func NewDegradationCounter(mp metric.MeterProvider) (*DegradationCounter, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	counter, err := mp.Meter(instrumentationName).Int64Counter(
		"camera.degraded",
		metric.WithDescription("Best-effort camera steps that did not apply"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create degradation counter: %w", err)
	}
	return &DegradationCounter{counter: counter}, nil
}

func (d *DegradationCounter) Degraded(ctx context.Context, op string, reason error) {
	d.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("degraded", trace.WithAttributes(
			attribute.String("op", op),
			attribute.String("reason", reason.Error()),
		))
	}
}

// Tracer returns the tracer used for camera operations.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
