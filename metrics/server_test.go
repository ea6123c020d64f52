package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/myLogic207/boundedbuf/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, values map[string]interface{}) *config.Config {
	t.Helper()
	values["LOGGER"] = map[string]interface{}{"LEVEL": "ERROR"}
	cfg, err := config.WithInitialValues(context.Background(), values)
	require.NoError(t, err)
	return cfg
}

func TestHandler(t *testing.T) {
	server := NewServer()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "boundedbuf_test_total",
		Help: "test counter",
	})
	server.Registry().MustRegister(counter)
	counter.Add(3)

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, "boundedbuf_test_total 3")
	assert.Contains(t, body, "go_goroutines")

	recorder = httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())
}

func TestDisabledByDefault(t *testing.T) {
	server := NewServer()
	require.NoError(t, server.Init(context.Background(), testConfig(t, map[string]interface{}{})))
	assert.Empty(t, server.Addr())
	assert.NoError(t, server.Shutdown())
}

func TestServe(t *testing.T) {
	server := NewServer()
	cfg := testConfig(t, map[string]interface{}{
		"ACTIVE":  true,
		"ADDRESS": "127.0.0.1:0",
	})
	require.NoError(t, server.Init(context.Background(), cfg))
	addr := server.Addr()
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "process_") || strings.Contains(string(body), "go_"))

	require.NoError(t, server.Shutdown())
	assert.Empty(t, server.Addr())
	_, err = http.Get("http://" + addr + "/health")
	assert.Error(t, err)
}

func TestServeInvalidAddress(t *testing.T) {
	server := NewServer()
	cfg := testConfig(t, map[string]interface{}{
		"ACTIVE":  true,
		"ADDRESS": "not-an-address",
	})
	assert.ErrorIs(t, server.Init(context.Background(), cfg), ErrListen)
}
