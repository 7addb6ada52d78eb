package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRoot(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(nil).GetRoot(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ride-hailing backend is running", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestGetHealth(t *testing.T) {
	t.Run("no checks", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHandler(nil).GetHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Empty(t, resp.Checks)
	})

	t.Run("failing dependency", func(t *testing.T) {
		h := NewHandler(map[string]Checker{
			"store":     func(context.Context) error { return nil },
			"messaging": func(context.Context) error { return errors.New("connection refused") },
		})
		rec := httptest.NewRecorder()
		h.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "ok", resp.Checks["store"])
		assert.Equal(t, "connection refused", resp.Checks["messaging"])
	})
}
