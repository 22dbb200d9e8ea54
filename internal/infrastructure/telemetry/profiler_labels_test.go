package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithProfilingLabels(t *testing.T) {
	t.Run("runs without labels", func(t *testing.T) {
		called := false
		WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
		assert.True(t, called)
	})

	t.Run("attaches pprof labels", func(t *testing.T) {
		var route, method string
		var hasRequestID bool
		WithProfilingLabels(context.Background(), map[string]string{
			"route":      "/gerar-etiqueta",
			"method":     "POST",
			"request_id": "abc",
		}, func(ctx context.Context) {
			route, _ = pprof.Label(ctx, "route")
			method, _ = pprof.Label(ctx, "method")
			_, hasRequestID = pprof.Label(ctx, "request_id")
		})

		assert.Equal(t, "/gerar-etiqueta", route)
		assert.Equal(t, "POST", method)
		assert.False(t, hasRequestID)
	})
}

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"Route Name":  "/x",
		"op-kind":     strings.Repeat("a", MaxLabelValueLength+10),
		"empty":       "",
		"postal_code": "01001000",
	})

	assert.Equal(t, []string{"route_name", "/x", "op_kind", strings.Repeat("a", MaxLabelValueLength)}, pairs)
	assert.Nil(t, sanitizeLabels(nil))
}

func TestHTTPRequestLabels(t *testing.T) {
	assert.Equal(t, map[string]string{"route": "/api/cep/:cep/json", "method": "GET"},
		HTTPRequestLabels("/api/cep/:cep/json", "GET"))
}
