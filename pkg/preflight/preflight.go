// Package preflight runs the optional checks that precede a server launch:
// start-up banner, start-up delay, required environment, Python import
// sanity check and database reachability.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cayecrypto/polymarket-btc-bot/internal/config"
	"github.com/cayecrypto/polymarket-btc-bot/internal/logging"
)

var (
	// ErrMissingEnv is returned when a required environment variable is unset or empty.
	ErrMissingEnv = errors.New("required environment variable missing")
	// ErrImportCheck is returned when a required Python module fails to import.
	ErrImportCheck = errors.New("python import check failed")
	// ErrDatabaseProbe is returned when the database cannot be reached.
	ErrDatabaseProbe = errors.New("database probe failed")
)

// Step names, used in logs and metrics.
const (
	StepBanner   = "banner"
	StepDelay    = "startup_delay"
	StepEnv      = "required_env"
	StepImports  = "import_check"
	StepDatabase = "database"
)

// Recorder receives preflight outcomes.
type Recorder interface {
	PreflightFailed(step string)
}

// Option configures a Runner.
type Option func(r *Runner)

// WithOutput sets where the banner is written. Defaults to os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithLookup sets the environment lookup. Defaults to os.LookupEnv.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(r *Runner) { r.lookup = lookup }
}

// WithRecorder registers a Recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// Runner executes the preflight steps in a fixed order.
type Runner struct {
	cfg      config.PreflightConfig
	logger   logging.Logger
	out      io.Writer
	lookup   func(string) (string, bool)
	recorder Recorder

	runPython func(ctx context.Context, python string, args ...string) ([]byte, error)
	ping      func(ctx context.Context, url string) error
}

// NewRunner creates a Runner.
func NewRunner(cfg config.PreflightConfig, logger logging.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:       cfg,
		logger:    logger.With("component", "preflight"),
		out:       os.Stderr,
		lookup:    os.LookupEnv,
		runPython: runPython,
		ping:      pingDatabase,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes banner, delay, required environment, import check and
// database probe, in that order. Import failures always abort. Missing
// environment and database failures abort only in strict mode and are
// logged as warnings otherwise.
func (r *Runner) Run(ctx context.Context, b Banner) error {
	if r.cfg.Banner {
		if err := b.Write(r.out); err != nil {
			r.logger.Warn("Failed to write banner", "error", err)
		}
	}

	if err := r.delay(ctx); err != nil {
		return r.fail(StepDelay, err)
	}

	if err := r.checkEnv(); err != nil {
		if err := r.soft(StepEnv, err); err != nil {
			return err
		}
	}

	if r.cfg.ImportCheck {
		if err := r.checkImports(ctx); err != nil {
			return r.fail(StepImports, err)
		}
	}

	if r.cfg.DatabaseCheck {
		if err := r.probeDatabase(ctx); err != nil {
			if err := r.soft(StepDatabase, err); err != nil {
				return err
			}
		}
	}

	r.logger.Debug("Preflight completed", "strict", r.cfg.Strict)
	return nil
}

// fail records a fatal step failure.
func (r *Runner) fail(step string, err error) error {
	if r.recorder != nil {
		r.recorder.PreflightFailed(step)
	}
	r.logger.Error("Preflight step failed", "step", step, "error", err)
	return fmt.Errorf("preflight %s: %w", step, err)
}

// soft records a failure that is fatal only in strict mode.
func (r *Runner) soft(step string, err error) error {
	if r.cfg.Strict {
		return r.fail(step, err)
	}
	if r.recorder != nil {
		r.recorder.PreflightFailed(step)
	}
	r.logger.Warn("Preflight step failed, continuing", "step", step, "error", err)
	return nil
}

func (r *Runner) delay(ctx context.Context) error {
	d := r.cfg.StartupDelay
	if d <= 0 {
		return nil
	}
	r.logger.Info("Applying startup delay", "delay", d)

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) checkEnv() error {
	var missing []string
	for _, key := range r.cfg.RequiredEnv {
		if v, ok := r.lookup(key); !ok || v == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingEnv, missing)
	}
	return nil
}
