package launcher

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"

	"github.com/cayecrypto/polymarket-btc-bot/internal/logging"
)

// Observer is notified about a server running in child mode.
type Observer interface {
	// Started is called once the child is running. ctx is cancelled when
	// the child exits.
	Started(ctx context.Context, pid int)
	// Exited is called with the child's exit status.
	Exited(code int)
}

// Option configures a Launcher.
type Option func(l *Launcher)

// WithObserver registers an Observer for child mode.
func WithObserver(o Observer) Option {
	return func(l *Launcher) { l.observer = o }
}

// WithEnviron sets the environment passed to the server. Defaults to os.Environ().
func WithEnviron(env []string) Option {
	return func(l *Launcher) { l.env = env }
}

// WithStdio sets the standard streams of a child-mode server.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		l.stdin, l.stdout, l.stderr = stdin, stdout, stderr
	}
}

// Launcher starts the Streamlit server, either by replacing the current
// process or by supervising it as a child.
type Launcher struct {
	opts     Options
	logger   logging.Logger
	observer Observer

	env            []string
	stdin          io.Reader
	stdout, stderr io.Writer
	lookPath       func(file string) (string, error)
	execFn         func(path string, argv, env []string) error
}

// New creates a Launcher for opts.
func New(opts Options, logger logging.Logger, options ...Option) *Launcher {
	l := &Launcher{
		opts:     opts,
		logger:   logger.With("component", "launcher"),
		env:      os.Environ(),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		lookPath: exec.LookPath,
		execFn:   execServer,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Args returns the argv the server will be started with.
func (l *Launcher) Args() []string {
	return BuildArgs(l.opts)
}

// Run starts the server. In exec mode it only returns on failure. In child
// mode it returns once the server exits: nil for status 0, an *ExitError
// otherwise. Failing to find or start the binary is always an error.
func (l *Launcher) Run(ctx context.Context) error {
	if len(l.opts.Command) == 0 {
		return ErrNoCommand
	}
	if !ValidPort(l.opts.Port) {
		l.logger.Warn("Port is not a valid TCP port, passing it through", "port", l.opts.Port)
	}

	name := l.opts.Command[0]
	path, err := l.lookPath(name)
	if err != nil {
		l.logger.Error("Server binary lookup failed", "command", name, "error", err)
		return classifyStartErr(name, err)
	}

	argv := l.Args()
	l.logger.Info("Launching server",
		"mode", l.opts.Mode,
		"path", path,
		"port", l.opts.Port,
		"address", BindAddress,
		"args", argv,
	)

	if l.opts.Mode == ModeChild {
		return l.runChild(ctx, path, argv)
	}

	err = l.execFn(path, argv, l.env)
	if err == nil {
		return nil
	}
	if errors.Is(err, errExecUnsupported) {
		l.logger.Warn("Process replacement unsupported on this platform, running as child")
		return l.runChild(ctx, path, argv)
	}
	l.logger.Error("Failed to exec server", "path", path, "error", err)
	return classifyStartErr(name, err)
}

// runChild starts the server as a child process, forwards termination
// signals to it and waits for it to exit.
func (l *Launcher) runChild(ctx context.Context, path string, argv []string) error {
	cmd := exec.Command(path, argv[1:]...)
	cmd.Args = argv
	cmd.Env = l.env
	cmd.Stdin, cmd.Stdout, cmd.Stderr = l.stdin, l.stdout, l.stderr

	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, forwardedSignals...)
	defer signal.Stop(sigs)

	if err := cmd.Start(); err != nil {
		l.logger.Error("Failed to start server", "path", path, "error", err)
		return classifyStartErr(argv[0], err)
	}
	pid := cmd.Process.Pid
	l.logger.Info("Server started", "pid", pid)

	childCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if l.observer != nil {
		l.observer.Started(childCtx, pid)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	ctxDone := ctx.Done()
	for {
		select {
		case sig := <-sigs:
			l.logger.Info("Forwarding signal to server", "signal", sig.String(), "pid", pid)
			if err := cmd.Process.Signal(sig); err != nil {
				l.logger.Warn("Failed to forward signal", "signal", sig.String(), "error", err)
			}
		case <-ctxDone:
			ctxDone = nil
			l.logger.Info("Context canceled, terminating server", "pid", pid)
			if err := terminate(cmd.Process); err != nil {
				l.logger.Warn("Failed to terminate server", "pid", pid, "error", err)
			}
		case waitErr := <-done:
			code := exitStatus(cmd.ProcessState)
			cancel()
			if l.observer != nil {
				l.observer.Exited(code)
			}
			if code == 0 {
				l.logger.Info("Server exited cleanly", "pid", pid)
				return nil
			}
			l.logger.Error("Server exited", "pid", pid, "status", code, "error", waitErr)
			return &ExitError{Code: code}
		}
	}
}
