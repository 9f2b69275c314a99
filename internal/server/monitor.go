// Package server supervises a child-mode Streamlit server: readiness
// probing, the status HTTP server and exit metrics.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/cayecrypto/polymarket-btc-bot/internal/config"
	"github.com/cayecrypto/polymarket-btc-bot/internal/logging"
	"github.com/cayecrypto/polymarket-btc-bot/internal/metrics"
	"github.com/cayecrypto/polymarket-btc-bot/pkg/health"
)

// Monitor implements launcher.Observer.
type Monitor struct {
	logger  logging.Logger
	metrics *metrics.Metrics
	checker *health.Checker
	status  *Server
	wg      sync.WaitGroup
}

// NewMonitor builds the readiness checker and status server for a server
// listening on port, as enabled by cfg.
func NewMonitor(cfg *config.Config, port string, m *metrics.Metrics, logger logging.Logger) (*Monitor, error) {
	mon := &Monitor{
		logger:  logger.With("component", "monitor"),
		metrics: m,
	}

	if cfg.Health.Enabled {
		// The port is passed to the server unvalidated; a value that makes
		// no URL only costs the readiness probe.
		target, err := health.NewTarget(health.LocalURL(port), cfg.Health.FailureThreshold)
		if err != nil {
			mon.logger.Warn("Readiness probe disabled, port is not probeable", "port", port, "error", err)
		} else {
			mon.checker = health.NewChecker(target, logger,
				health.WithInterval(cfg.Health.Interval),
				health.WithTimeout(cfg.Health.Timeout),
				health.WithPath(cfg.Health.Path),
				health.WithRecorder(m),
			)
		}
	}

	if cfg.Status.Enabled {
		if cfg.Status.Port == port {
			return nil, fmt.Errorf("%w: status port %s collides with the server port", config.ErrInvalidConfig, port)
		}
		mon.status = NewServer(net.JoinHostPort("", cfg.Status.Port), port, mon.checker, m, logger)
	}

	return mon, nil
}

// Checker returns the readiness checker, nil when disabled.
func (m *Monitor) Checker() *health.Checker {
	return m.checker
}

// Started starts probing and serving status until ctx is done.
func (m *Monitor) Started(ctx context.Context, pid int) {
	m.logger.Debug("Monitoring server", "pid", pid)

	if m.checker != nil {
		m.checker.Run(ctx)
	}
	if m.status != nil {
		m.status.SetPID(pid)
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := m.status.Run(ctx); err != nil {
				m.logger.Error("Status server stopped with error", "error", err)
			}
		}()
	}
}

// Exited records the exit status and stops everything Started began.
func (m *Monitor) Exited(code int) {
	m.metrics.RecordExit(code)
	if m.status != nil {
		m.status.MarkExited()
	}
	if m.checker != nil {
		m.checker.Stop()
	}
	m.wg.Wait()
}
