package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHealth(func() int { return 3 })(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(3), body["clients"])
}

func TestHandleMetrics(t *testing.T) {
	type snap struct {
		Broadcasts int `json:"broadcasts"`
	}

	rec := httptest.NewRecorder()
	HandleMetrics(func() snap { return snap{Broadcasts: 7} })(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"broadcasts":7}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
