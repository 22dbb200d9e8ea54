// Package metrictest records service metrics in memory for assertions.
package metrictest

import (
	"context"
	"testing"

	"github.com/etiqueta/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Recorder pairs a Metrics with the manual reader collecting it
type Recorder struct {
	t       *testing.T
	reader  *sdkmetric.ManualReader
	Metrics *telemetry.Metrics
}

// New creates a Recorder shut down on test cleanup
func New(t *testing.T) *Recorder {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{ServiceName: "test"}, nil,
		telemetry.WithMetricReader(reader))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})

	m, err := telemetry.NewMetrics(mp.Meter(telemetry.MeterName))
	require.NoError(t, err)
	return &Recorder{t: t, reader: reader, Metrics: m}
}

// Collect reads the current state of every instrument
func (r *Recorder) Collect() metricdata.ResourceMetrics {
	r.t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(r.t, r.reader.Collect(context.Background(), &rm))
	return rm
}

// Find returns the metric called name, or nil
func (r *Recorder) Find(name string) *metricdata.Metrics {
	rm := r.Collect()
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// Count sums the int64 counter points of name carrying every attr
func (r *Recorder) Count(name string, attrs ...attribute.KeyValue) int64 {
	r.t.Helper()
	m := r.Find(name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(r.t, ok, "%s is not an int64 sum", name)
	var total int64
	for _, dp := range sum.DataPoints {
		if hasAll(dp.Attributes, attrs) {
			total += dp.Value
		}
	}
	return total
}

// Observations counts the samples recorded in histogram name carrying every attr
func (r *Recorder) Observations(name string, attrs ...attribute.KeyValue) uint64 {
	r.t.Helper()
	m := r.Find(name)
	if m == nil {
		return 0
	}
	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(r.t, ok, "%s is not a float64 histogram", name)
	var total uint64
	for _, dp := range hist.DataPoints {
		if hasAll(dp.Attributes, attrs) {
			total += dp.Count
		}
	}
	return total
}

// Gauge returns the last int64 gauge value of name
func (r *Recorder) Gauge(name string, attrs ...attribute.KeyValue) (int64, bool) {
	r.t.Helper()
	m := r.Find(name)
	if m == nil {
		return 0, false
	}
	gauge, ok := m.Data.(metricdata.Gauge[int64])
	require.True(r.t, ok, "%s is not an int64 gauge", name)
	for _, dp := range gauge.DataPoints {
		if hasAll(dp.Attributes, attrs) {
			return dp.Value, true
		}
	}
	return 0, false
}

func hasAll(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		v, ok := set.Value(kv.Key)
		if !ok || v.Type() != kv.Value.Type() || v.Emit() != kv.Value.Emit() {
			return false
		}
	}
	return true
}
