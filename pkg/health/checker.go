// Package health probes the readiness of the launched Streamlit server.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cayecrypto/polymarket-btc-bot/internal/logging"
)

// Recorder receives probe outcomes.
type Recorder interface {
	ObserveProbe(healthy bool)
	SetReady(ready bool)
}

// Checker periodically probes a Target and tracks its readiness.
type Checker struct {
	client   *http.Client   // HTTP client for health checks
	target   *Target        // Server being checked
	logger   logging.Logger // Logger for health check events
	recorder Recorder

	interval time.Duration // Interval between probes
	timeout  time.Duration // Timeout for a single probe
	path     string        // Path for health check requests

	readyOnce sync.Once
	ready     chan struct{}      // Closed on the first healthy probe
	cancel    context.CancelFunc // Cancels the probe loop
	wg        sync.WaitGroup     // Tracks the probe loop
	stopOnce  sync.Once          // Ensures Stop is called only once
}

// Option configures a Checker.
type Option func(c *Checker)

// WithInterval sets the interval between probes.
func WithInterval(d time.Duration) Option {
	return func(c *Checker) { c.interval = d }
}

// WithTimeout sets the timeout per single probe.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.timeout = d }
}

// WithPath sets the HTTP path to use when checking health status.
func WithPath(p string) Option {
	return func(c *Checker) { c.path = p }
}

// WithRecorder registers a Recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Checker) { c.recorder = r }
}

const (
	defaultInterval = 10 * time.Second
	defaultTimeout  = 2 * time.Second
)

// NewChecker creates a Checker for target with provided options.
// Non-positive intervals and timeouts fall back to the defaults.
func NewChecker(target *Target, logger logging.Logger, opts ...Option) *Checker {
	c := &Checker{
		target:   target,
		logger:   logger.With("component", "health"),
		interval: defaultInterval,
		timeout:  defaultTimeout,
		path:     DefaultPath,
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.interval <= 0 {
		c.interval = defaultInterval
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	c.client = NewClient(c.timeout)
	return c
}

// Run starts the periodic probing. The first probe happens immediately.
func (c *Checker) Run(ctx context.Context) {
	var cctx context.Context
	cctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.logger.Info("starting health checker",
			"url", c.url(),
			"interval", c.interval,
			"timeout", c.timeout,
		)

		c.Check(cctx)
		for {
			select {
			case <-ticker.C:
				c.Check(cctx)
			case <-cctx.Done():
				c.logger.Info("stopping health checker")
				return
			}
		}
	}()
}

// Stop cancels the probe loop, waits for it and closes idle connections.
func (c *Checker) Stop() {
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		c.wg.Wait()
		if t, ok := c.client.Transport.(*http.Transport); ok {
			t.CloseIdleConnections()
		}
	})
}

// Ready is closed once the target has answered a probe successfully.
func (c *Checker) Ready() <-chan struct{} {
	return c.ready
}

// WaitReady blocks until the target is ready or ctx is done.
func (c *Checker) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Target returns the checked target.
func (c *Checker) Target() *Target {
	return c.target
}

// Check performs one probe and records the result.
func (c *Checker) Check(ctx context.Context) bool {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := Probe(reqCtx, c.client, c.url())
	healthy := err == nil
	if err != nil && ctx.Err() != nil {
		c.logger.Debug("Health check canceled", "url", c.url(), "error", ctx.Err())
		return false
	}

	changed := c.target.SetAlive(healthy)
	if c.recorder != nil {
		c.recorder.ObserveProbe(healthy)
	}

	switch {
	case healthy && changed:
		c.logger.Info("Server is ready", "url", c.url())
	case !healthy && changed:
		c.logger.Warn("Server became unhealthy", "url", c.url(), "error", err)
	case !healthy:
		c.logger.Debug("Health check failed", "url", c.url(), "error", err)
	}

	if changed && c.recorder != nil {
		c.recorder.SetReady(c.target.IsAlive())
	}
	if healthy {
		c.readyOnce.Do(func() { close(c.ready) })
	}
	return healthy
}

func (c *Checker) url() string {
	u := *c.target.URL
	u.Path = c.path
	return u.String()
}
