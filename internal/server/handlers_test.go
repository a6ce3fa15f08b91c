package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	s := newTestServer(newMockPipeline())

	rec := httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.NotEmpty(t, resp.Time)
	assert.Positive(t, resp.Memory.Goroutines)
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	s := newTestServer(newMockPipeline())

	rec := httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSymbologiesHandler(t *testing.T) {
	s := newTestServer(newMockPipeline())

	rec := httptest.NewRecorder()
	s.symbologiesHandler(rec, httptest.NewRequest(http.MethodGet, "/symbologies", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SymbologiesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	info := resp.Symbologies[0]
	assert.Equal(t, "i2of5", info.Name)
	assert.Equal(t, 5, info.CodeLength)
	assert.Equal(t, 2, info.WideCount)
	assert.Equal(t, 3, info.WideMultiplier)
	assert.Equal(t, "0000", info.Header)
	assert.Equal(t, "100", info.Tail)
	assert.Equal(t, 17, info.MinimumSize)

	rec = httptest.NewRecorder()
	s.symbologiesHandler(rec, httptest.NewRequest(http.MethodDelete, "/symbologies", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestFormat(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/decode/image?format=csv", nil)
	assert.Equal(t, "csv", requestFormat(req))

	req = httptest.NewRequest(http.MethodGet, "/decode/image", nil)
	assert.Empty(t, requestFormat(req))
}

func TestWriteErrorResponse(t *testing.T) {
	s := newTestServer(nil)

	rec := httptest.NewRecorder()
	s.writeErrorResponse(rec, "broken", http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	var resp DecodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "broken", resp.Error)
}
