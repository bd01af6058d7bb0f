package restserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap/zaptest"

	"github.com/uvmon/uvmon/internal/monitor"
	"github.com/uvmon/uvmon/internal/types"
	"github.com/uvmon/uvmon/pkg/config"
)

func testController(t *testing.T) (*Controller, *monitor.Status) {
	t.Helper()
	status := monitor.NewStatus()
	rc := &config.RESTServerData{ListenAddr: "127.0.0.1", Port: 0}
	c, err := NewController(context.Background(), &sync.WaitGroup{}, rc, status, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	return c, status
}

func TestGetDeviceStatus(t *testing.T) {
	c, status := testController(t)
	status.Update(types.Reading{DeviceName: "patio-uv", UVIndex: 4.2, BurnPercent: 12.5})

	req := httptest.NewRequest("GET", "/status/patio-uv", nil)
	rec := httptest.NewRecorder()
	c.setupRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got types.Reading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "patio-uv", got.DeviceName)
	assert.InDelta(t, 4.2, got.UVIndex, 1e-9)
}

func TestGetDeviceStatusNotFound(t *testing.T) {
	c, _ := testController(t)

	req := httptest.NewRequest("GET", "/status/nothere", nil)
	rec := httptest.NewRecorder()
	c.setupRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAllStatusMsgpack(t *testing.T) {
	c, status := testController(t)
	status.Update(types.Reading{DeviceName: "a", CumulativeDose: 100})
	status.Update(types.Reading{DeviceName: "b", CumulativeDose: 200})

	req := httptest.NewRequest("GET", "/status?format=msgpack", nil)
	rec := httptest.NewRecorder()
	c.setupRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-msgpack", rec.Header().Get("Content-Type"))

	var got []types.Reading
	dec := msgpack.NewDecoder(rec.Body)
	dec.SetCustomStructTag("json")
	require.NoError(t, dec.Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].DeviceName)
}

func TestGetHealth(t *testing.T) {
	c, _ := testController(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	c.setupRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got["status"])
}
