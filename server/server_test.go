package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/go-kyugo/productapi/config"
	"github.com/go-kyugo/productapi/logger"
	"github.com/go-kyugo/productapi/router"
)

func testConfig() *cfg.Config {
	return &cfg.Config{
		Server:   cfg.ServerConfig{Host: "127.0.0.1", Port: 8080, ShutdownTimeoutSecs: 1, MaxRequestBodyBytes: 1024},
		Database: cfg.DatabaseConfig{Type: "memory"},
		Log:      cfg.LogConfig{Level: "info", Format: "console"},
	}
}

func newTestServer(t *testing.T, check func(context.Context) error) *Server {
	t.Helper()
	s, err := New(Options{
		Config:      testConfig(),
		Logger:      logger.NewNop(),
		Registry:    prometheus.NewRegistry(),
		HealthCheck: check,
	})
	require.NoError(t, err)
	return s
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	c := testConfig()
	c.Database.Type = "oracle"

	_, err := New(Options{Config: c})

	assert.ErrorContains(t, err, "unsupported database type")
}

func TestHealthcheck(t *testing.T) {
	rec := get(newTestServer(t, nil), "/healthcheck")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealthcheckReportsStorageFailure(t *testing.T) {
	s := newTestServer(t, func(context.Context) error { return errors.New("down") })

	rec := get(s, "/healthcheck")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	get(s, "/healthcheck")

	rec := get(s, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `productapi_http_requests_total{method="GET",route="/healthcheck",status="200"} 1`)
}

type panicky struct{}

func (panicky) RegisterRoutes(r *router.Router) {
	r.Group("/boom").Get("/", func(http.ResponseWriter, *http.Request) { panic("boom") })
}

func TestPanicsAreRecovered(t *testing.T) {
	s := newTestServer(t, nil)
	s.RegisterRoutes(panicky{})

	rec := get(s, "/boom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServices(t *testing.T) {
	s := newTestServer(t, nil)
	s.RegisterService("product", 42)

	var c Component
	c.Init(s)

	v, ok := c.LookupService("product")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	_, ok = c.LookupService("missing")
	assert.False(t, ok)
	assert.Same(t, s.Config(), c.Config())
	assert.NotNil(t, c.Logger())
}

func TestServeStopsOnCancel(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthcheck")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
