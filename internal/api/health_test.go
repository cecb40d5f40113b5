package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viddel/wrooms/internal/api"
)

func TestHealthEndpoints(t *testing.T) {
	server := setupServer(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp, err := server.Client().Get(server.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var health api.HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		assert.Equal(t, "UP", health.Status)
	}
}

func TestHealthHandlersDirect(t *testing.T) {
	for name, handler := range map[string]http.HandlerFunc{
		"live":  api.HealthLiveHandler,
		"ready": api.HealthReadyHandler,
	} {
		t.Run(name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler(recorder, httptest.NewRequest(http.MethodGet, "/health/"+name, nil))

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
			assert.JSONEq(t, `{"status":"UP"}`, recorder.Body.String())
		})
	}
}
