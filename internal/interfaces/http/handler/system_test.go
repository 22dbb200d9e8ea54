package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/etiqueta/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	pingErr error
	stats   persistence.ConnectionStats
}

func (f *fakeDB) Ping() error { return f.pingErr }

func (f *fakeDB) Stats() (persistence.ConnectionStats, error) { return f.stats, nil }

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("etiqueta", "1.0.0", nil)
	c, w := newTestContext(http.MethodGet, "/api/system/info")

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "etiqueta", data["name"])
	assert.Equal(t, "1.0.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("etiqueta", "1.0.0", nil)
	c, w := newTestContext(http.MethodGet, "/api/system/ping")

	h.Ping(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "pong", data["message"])
}

func TestSystemHandler_Health(t *testing.T) {
	health := func(db DatabaseChecker) (int, map[string]interface{}) {
		c, w := newTestContext(http.MethodGet, "/health")
		NewSystemHandler("etiqueta", "1.0.0", db).Health(c)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return w.Code, body
	}

	t.Run("healthy with stats", func(t *testing.T) {
		code, body := health(&fakeDB{stats: persistence.ConnectionStats{MaxOpenConnections: 10, Idle: 2}})

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "ok", body["database"])
		conns := body["connections"].(map[string]interface{})
		assert.EqualValues(t, 10, conns["max_open_connections"])
	})

	t.Run("database down", func(t *testing.T) {
		code, body := health(&fakeDB{pingErr: errors.New("connection refused")})

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", body["status"])
		assert.Equal(t, "error", body["database"])
	})

	t.Run("no database", func(t *testing.T) {
		code, body := health(nil)

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", body["status"])
	})
}
