package postal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etiqueta/backend/internal/infrastructure/telemetry"
	"github.com/etiqueta/backend/internal/infrastructure/telemetry/metrictest"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newDirectory(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClient_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("returns address for known code", func(t *testing.T) {
		var gotPath string
		srv, _ := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"logradouro":"Praça da Sé","bairro":"Sé","localidade":"São Paulo","uf":"SP"}`))
		})
		c := NewClient(ClientConfig{URLTemplate: srv.URL + "/ws/%s/json/"}, WithLogger(zaptest.NewLogger(t)))

		addr, err := c.Lookup(ctx, "01001-000")
		require.NoError(t, err)
		assert.Equal(t, "/ws/01001000/json/", gotPath)
		assert.Equal(t, "Praça da Sé", addr.StreetLine)
		assert.Equal(t, "SP", addr.StateCode)
	})

	t.Run("maps erro payload to ErrNotFound", func(t *testing.T) {
		srv, _ := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"erro": "true"}`))
		})
		c := NewClient(ClientConfig{URLTemplate: srv.URL + "/%s"})

		_, err := c.Lookup(ctx, "99999999")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("maps 404 to ErrNotFound", func(t *testing.T) {
		srv, _ := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		c := NewClient(ClientConfig{URLTemplate: srv.URL + "/%s"})

		_, err := c.Lookup(ctx, "99999999")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects invalid code without request", func(t *testing.T) {
		srv, calls := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {})
		c := NewClient(ClientConfig{URLTemplate: srv.URL + "/%s"})

		_, err := c.Lookup(ctx, "1234-5")
		assert.ErrorIs(t, err, ErrInvalidCode)
		assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	})

	t.Run("server error is a transport failure", func(t *testing.T) {
		srv, _ := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		c := NewClient(ClientConfig{URLTemplate: srv.URL + "/%s"})

		_, err := c.Lookup(ctx, "01001000")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("malformed body is a transport failure", func(t *testing.T) {
		srv, _ := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})
		c := NewClient(ClientConfig{URLTemplate: srv.URL + "/%s"})

		_, err := c.Lookup(ctx, "01001000")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("times out", func(t *testing.T) {
		srv, _ := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		})
		c := NewClient(ClientConfig{URLTemplate: srv.URL + "/%s", Timeout: 20 * time.Millisecond})

		_, err := c.Lookup(ctx, "01001000")
		require.Error(t, err)
	})
}

func TestClient_CircuitBreaker(t *testing.T) {
	ctx := context.Background()

	t.Run("opens after consecutive failures and stops calling", func(t *testing.T) {
		srv, calls := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		rec := metrictest.New(t)
		c := NewClient(ClientConfig{
			URLTemplate:     srv.URL + "/%s",
			BreakerFailures: 2,
			BreakerOpenFor:  time.Minute,
		}, WithMetrics(rec.Metrics))

		for i := 0; i < 2; i++ {
			_, err := c.Lookup(ctx, "01001000")
			require.Error(t, err)
		}
		assert.Equal(t, gobreaker.StateOpen, c.State())

		_, err := c.Lookup(ctx, "01001000")
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, int32(2), atomic.LoadInt32(calls))

		assert.Equal(t, int64(2), postalCount(rec, telemetry.OutcomeFailure))
		assert.Equal(t, int64(1), postalCount(rec, telemetry.OutcomeUnavailable))
		state, ok := rec.Gauge("postal_breaker_state")
		require.True(t, ok)
		assert.Equal(t, int64(gobreaker.StateOpen), state)
	})

	t.Run("not found does not trip the breaker", func(t *testing.T) {
		srv, _ := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"erro": true}`))
		})
		c := NewClient(ClientConfig{URLTemplate: srv.URL + "/%s", BreakerFailures: 1})

		for i := 0; i < 3; i++ {
			_, err := c.Lookup(ctx, "99999999")
			assert.ErrorIs(t, err, ErrNotFound)
		}
		assert.Equal(t, gobreaker.StateClosed, c.State())
	})
}
