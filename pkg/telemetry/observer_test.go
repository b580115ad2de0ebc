package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestDegradationCounter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	c, err := NewDegradationCounter(mp)
	if err != nil {
		t.Fatalf("NewDegradationCounter: %v", err)
	}
	ctx := context.Background()
	c.Degraded(ctx, "focus", errors.New("not allowed"))
	c.Degraded(ctx, "focus", errors.New("not allowed"))
	c.Degraded(ctx, "flash", errors.New("no torch"))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(rm.ScopeMetrics) != 1 || len(rm.ScopeMetrics[0].Metrics) != 1 {
		t.Fatalf("unexpected metrics %+v", rm.ScopeMetrics)
	}
	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", rm.ScopeMetrics[0].Metrics[0].Data)
	}

	got := map[string]int64{}
	for _, dp := range sum.DataPoints {
		op, _ := dp.Attributes.Value(attribute.Key("op"))
		got[op.AsString()] = dp.Value
	}
	if got["focus"] != 2 || got["flash"] != 1 {
		t.Errorf("unexpected counts %v", got)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{SampleRatio: 3}.withDefaults()
	if cfg.ServiceName != "camera-preview" || cfg.Endpoint != "localhost:4317" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.SampleRatio != 1 {
		t.Errorf("out of range ratio must reset to 1, got %v", cfg.SampleRatio)
	}
	if cfg.MetricInterval <= 0 {
		t.Error("metric interval not defaulted")
	}
}
