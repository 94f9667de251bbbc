package healthprobe

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(t *testing.T, handler http.HandlerFunc, path string) (int, HealthResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	return rec.Code, resp
}

func TestHealth_AlwaysOK(t *testing.T) {
	hc := New()

	for _, ready := range []bool{false, true} {
		hc.SetReady(ready)

		code, resp := probe(t, hc.Health(), "/health")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", resp.Status)
		assert.NotEmpty(t, resp.Uptime)
	}
}

func TestReady_FollowsState(t *testing.T) {
	hc := New()

	code, resp := probe(t, hc.Ready(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", resp.Status)
	assert.NotEmpty(t, resp.Message)

	hc.SetReady(true)

	code, resp = probe(t, hc.Ready(), "/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", resp.Status)
	assert.NotEmpty(t, resp.Uptime)

	hc.SetReady(false)

	code, _ = probe(t, hc.Ready(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestReady_ConcurrentAccess(t *testing.T) {
	hc := New()
	handler := hc.Ready()

	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			hc.SetReady(i%2 == 0)
		}
	}()

	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)
	}

	<-done
}
