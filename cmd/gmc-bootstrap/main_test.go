package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gmc/bootstrap/handlers"
	"github.com/gmc/bootstrap/probe"
	"github.com/gmc/bootstrap/routes"
)

type staticProber struct {
	name string
	addr string
	err  error
}

func (s *staticProber) Name() string                    { return s.name }
func (s *staticProber) Addr() string                    { return s.addr }
func (s *staticProber) Check(ctx context.Context) error { return s.err }

func testServer(t *testing.T, probers ...probe.Prober) *httptest.Server {
	t.Helper()
	logger := zaptest.NewLogger(t)
	health := handlers.NewHealthHandler(probers, time.Second, "test-instance", "gmc_network", logger)
	ts := httptest.NewServer(routes.SetupRoutes(health))
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthEndpoint(t *testing.T) {
	ts := testServer(t, &staticProber{name: "postgres", addr: "db:5432"})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "gmc_network", data["network"])
}

func TestReadinessEndpoint_NotReadyWithoutInfrastructure(t *testing.T) {
	ts := testServer(t,
		&staticProber{name: "postgres", addr: "db:5432", err: assert.AnError},
		&staticProber{name: "redis", addr: "cache:6379"},
	)

	resp, err := http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "service_unavailable", body["error"])

	details := body["details"].(map[string]interface{})
	checks := details["checks"].(map[string]interface{})
	assert.Equal(t, "unhealthy", checks["postgres"])
	assert.Equal(t, "healthy", checks["redis"])
}

func TestUnknownEndpoint(t *testing.T) {
	ts := testServer(t, &staticProber{name: "postgres", addr: "db:5432"})

	resp, err := http.Get(ts.URL + "/api/v1/nonexistent")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, "endpoint not found", body["message"])
}

func TestCORSPreflight(t *testing.T) {
	ts := testServer(t, &staticProber{name: "postgres", addr: "db:5432"})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/readyz", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
