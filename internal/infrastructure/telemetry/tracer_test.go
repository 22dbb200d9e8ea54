package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(context.Background()))
	assert.NotPanics(t, tp.EnableSpanProfiles)
}

func TestNewResource(t *testing.T) {
	res, err := newResource("etiqueta")
	require.NoError(t, err)

	attrs := attrMap(res.Attributes())
	assert.Equal(t, "etiqueta", attrs["service.name"].AsString())
	assert.Equal(t, ServiceVersion, attrs["service.version"].AsString())
}

func TestNewSampler(t *testing.T) {
	rootParams := func() sdktrace.SamplingParameters {
		return sdktrace.SamplingParameters{
			ParentContext: context.Background(),
			TraceID:       trace.TraceID{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
			Name:          "root",
		}
	}

	tests := []struct {
		name  string
		ratio float64
		want  sdktrace.SamplingDecision
	}{
		{"always", 1, sdktrace.RecordAndSample},
		{"above one", 2, sdktrace.RecordAndSample},
		{"never", 0, sdktrace.Drop},
		{"negative", -1, sdktrace.Drop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newSampler(tt.ratio).ShouldSample(rootParams())
			assert.Equal(t, tt.want, result.Decision)
		})
	}

	t.Run("ratio follows sampled parent", func(t *testing.T) {
		parent := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    trace.TraceID{1},
			SpanID:     trace.SpanID{1},
			TraceFlags: trace.FlagsSampled,
		})
		params := rootParams()
		params.ParentContext = trace.ContextWithSpanContext(context.Background(), parent)

		result := newSampler(0.0001).ShouldSample(params)
		assert.Equal(t, sdktrace.RecordAndSample, result.Decision)
	})
}
