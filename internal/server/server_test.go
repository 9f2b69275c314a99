package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/cayecrypto/polymarket-btc-bot/internal/config"
	"github.com/cayecrypto/polymarket-btc-bot/internal/logging"
	"github.com/cayecrypto/polymarket-btc-bot/internal/metrics"
	"github.com/cayecrypto/polymarket-btc-bot/pkg/health"
)

type ServerTestSuite struct {
	suite.Suite
	logger  logging.Logger
	metrics *metrics.Metrics
}

func (s *ServerTestSuite) SetupTest() {
	s.logger = logging.NewWriterLogger(io.Discard, "error")
	s.metrics = metrics.New()
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) get(srv *Server, path string) (*httptest.ResponseRecorder, StatusResponse) {
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body StatusResponse
	if path == "/healthz" {
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	}
	return rec, body
}

// TestHealthzWithoutChecker reports a running server.
func (s *ServerTestSuite) TestHealthzWithoutChecker() {
	srv := NewServer(":0", "8501", nil, s.metrics, s.logger)
	srv.SetPID(42)

	rec, body := s.get(srv, "/healthz")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))
	s.Equal(StatusResponse{Status: "running", PID: 42, Port: "8501"}, body)

	srv.MarkExited()
	rec, body = s.get(srv, "/healthz")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal("exited", body.Status)
}

// TestHealthzFollowsChecker maps readiness to status codes.
func (s *ServerTestSuite) TestHealthzFollowsChecker() {
	streamlit := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer streamlit.Close()

	target, err := health.NewTarget(streamlit.URL, 1)
	s.Require().NoError(err)
	checker := health.NewChecker(target, s.logger, health.WithTimeout(time.Second))
	srv := NewServer(":0", "8501", checker, s.metrics, s.logger)

	rec, body := s.get(srv, "/healthz")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal("starting", body.Status)

	s.True(checker.Check(context.Background()))
	rec, body = s.get(srv, "/healthz")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("ready", body.Status)

	streamlit.Close()
	s.False(checker.Check(context.Background()))
	rec, body = s.get(srv, "/healthz")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal("unhealthy", body.Status)
}

// TestHealthzMethod rejects writes.
func (s *ServerTestSuite) TestHealthzMethod() {
	srv := NewServer(":0", "8501", nil, s.metrics, s.logger)

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	s.Equal(http.StatusMethodNotAllowed, rec.Code)
}

// TestMetricsEndpoint exposes the launcher collectors.
func (s *ServerTestSuite) TestMetricsEndpoint() {
	s.metrics.RecordLaunch("child")
	srv := NewServer(":0", "8501", nil, s.metrics, s.logger)

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "launcher_launches_total")
}

// TestRunStopsOnCancel shuts the listener down with the context.
func (s *ServerTestSuite) TestRunStopsOnCancel() {
	srv := NewServer("127.0.0.1:0", "8501", nil, s.metrics, s.logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(6 * time.Second):
		s.Fail("status server did not stop")
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Health: config.HealthConfig{
			Enabled:          true,
			Path:             health.DefaultPath,
			Interval:         20 * time.Millisecond,
			Timeout:          time.Second,
			FailureThreshold: 1,
		},
		Status: config.StatusConfig{Enabled: true, Port: "0"},
	}
}

// TestMonitorRejectsPortCollision refuses to share the server port.
func (s *ServerTestSuite) TestMonitorRejectsPortCollision() {
	cfg := testConfig()
	cfg.Status.Port = "8501"

	_, err := NewMonitor(cfg, "8501", s.metrics, s.logger)
	s.ErrorIs(err, config.ErrInvalidConfig)
}

// TestMonitorUnprobeablePort keeps supervising without a readiness probe.
func (s *ServerTestSuite) TestMonitorUnprobeablePort() {
	for _, port := range []string{"abc", " 3000"} {
		mon, err := NewMonitor(testConfig(), port, s.metrics, s.logger)
		s.Require().NoError(err, port)
		s.Nil(mon.Checker(), port)
		s.Require().NotNil(mon.status, port)

		rec, body := s.get(mon.status, "/healthz")
		s.Equal(http.StatusOK, rec.Code, port)
		s.Equal("running", body.Status, port)
	}
}

// TestMonitorLifecycle probes the server while it runs and records its exit.
func (s *ServerTestSuite) TestMonitorLifecycle() {
	streamlit := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer streamlit.Close()

	u, err := url.Parse(streamlit.URL)
	s.Require().NoError(err)

	mon, err := NewMonitor(testConfig(), u.Port(), s.metrics, s.logger)
	s.Require().NoError(err)
	s.Require().NotNil(mon.Checker())

	ctx, cancel := context.WithCancel(context.Background())
	mon.Started(ctx, 1234)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	s.Require().NoError(mon.Checker().WaitReady(waitCtx))

	cancel()
	mon.Exited(2)

	count, err := testutil.GatherAndCount(s.metrics.Registry(), "launcher_server_exits_total")
	s.Require().NoError(err)
	s.Equal(1, count)

	rec := httptest.NewRecorder()
	s.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Contains(rec.Body.String(), "launcher_server_last_exit_code 2")
}
