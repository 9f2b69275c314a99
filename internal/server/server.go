package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cayecrypto/polymarket-btc-bot/internal/logging"
	"github.com/cayecrypto/polymarket-btc-bot/internal/metrics"
	"github.com/cayecrypto/polymarket-btc-bot/pkg/health"
)

// StatusResponse is the body of /healthz.
type StatusResponse struct {
	Status string `json:"status"` // ready, starting, unhealthy, running, exited
	PID    int    `json:"pid,omitempty"`
	Port   string `json:"port"`
}

// wrappedWriter captures status code for logging
type wrappedWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *wrappedWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Server is the side HTTP server exposing the launched server's status and
// the launcher metrics.
type Server struct {
	checker    *health.Checker // nil when readiness probing is disabled
	httpServer *http.Server
	logger     logging.Logger
	serverPort string
	pid        atomic.Int64
	exited     atomic.Bool
}

// NewServer creates a status server listening on addr.
func NewServer(addr, serverPort string, checker *health.Checker, m *metrics.Metrics, logger logging.Logger) *Server {
	s := &Server{
		checker:    checker,
		logger:     logger.With("component", "status"),
		serverPort: serverPort,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", m.Handler())

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      loggingMiddleware(s.logger, mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	return s
}

// SetPID records the pid of the launched server.
func (s *Server) SetPID(pid int) {
	s.pid.Store(int64(pid))
}

// MarkExited records that the launched server is gone.
func (s *Server) MarkExited() {
	s.exited.Store(true)
}

// start launches the HTTP server and listens for incoming connections.
func (s *Server) start() <-chan error {
	errChan := make(chan error, 1)
	s.logger.Info("Starting status server", "addr", s.httpServer.Addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Status server error", "error", err)
			errChan <- fmt.Errorf("status server failed: %w", err)
		}
		close(errChan)
	}()

	return errChan
}

// Run starts the HTTP server and gracefully shuts it down upon context cancellation.
func (s *Server) Run(ctx context.Context) error {
	errChan := s.start()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server handling in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Status server shutdown failed", "addr", s.httpServer.Addr, "error", err)
		return fmt.Errorf("status server shutdown failed: %w", err)
	}
	s.logger.Info("Status server stopped", "addr", s.httpServer.Addr)
	return nil
}

func (s *Server) status() (StatusResponse, int) {
	resp := StatusResponse{PID: int(s.pid.Load()), Port: s.serverPort}

	switch {
	case s.exited.Load():
		resp.Status = "exited"
		return resp, http.StatusServiceUnavailable
	case s.checker == nil:
		resp.Status = "running"
		return resp, http.StatusOK
	case s.checker.Target().IsAlive():
		resp.Status = "ready"
		return resp, http.StatusOK
	case s.checker.Target().LastChecked().IsZero():
		resp.Status = "starting"
	default:
		select {
		case <-s.checker.Ready():
			resp.Status = "unhealthy"
		default:
			resp.Status = "starting"
		}
	}
	return resp, http.StatusServiceUnavailable
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, `{"code": 405, "message": "Method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	resp, code := s.status()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("Failed to write status response", "error", err)
	}
}

// loggingMiddleware logs the method, path, duration, and status code of the request.
func loggingMiddleware(logger logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			clientIP = r.RemoteAddr
		}

		ww := &wrappedWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		logger.Debug("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", clientIP,
			"status", ww.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
