package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cayecrypto/polymarket-btc-bot/internal/config"
	"github.com/cayecrypto/polymarket-btc-bot/internal/logging"
	"github.com/cayecrypto/polymarket-btc-bot/internal/metrics"
	"github.com/cayecrypto/polymarket-btc-bot/internal/server"
	"github.com/cayecrypto/polymarket-btc-bot/pkg/launcher"
	"github.com/cayecrypto/polymarket-btc-bot/pkg/preflight"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.NewConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return launcher.ExitFailure
	}

	logger := logging.NewLogger(cfg)
	logger.Info("Configuration loaded",
		"profile", cfg.Profile,
		"mode", cfg.Mode,
		"config_file", cfg.ConfigFile,
	)
	if cfg.DotEnv.Path != "" {
		logger.Info("Loaded dotenv file",
			"path", cfg.DotEnv.Path,
			"exported", cfg.DotEnv.Exported,
			"skipped", cfg.DotEnv.Skipped,
		)
	}

	port, fromEnv := launcher.ResolvePort(os.LookupEnv, cfg.Server.PortEnv, cfg.Server.DefaultPort)
	opts := launcher.Options{
		Mode:              cfg.Mode,
		Port:              port,
		Command:           cfg.Server.Command,
		App:               cfg.Server.App,
		DisableUsageStats: cfg.Server.DisableUsageStats,
		DisableCORS:       cfg.Server.DisableCORS,
		DisableXSRF:       cfg.Server.DisableXSRF,
		ExtraArgs:         cfg.Server.ExtraArgs,
	}
	logger.Info("Port resolved", "port", port, "from_env", fromEnv, "env", cfg.Server.PortEnv)

	m := metrics.New()

	// Signals interrupt preflight only. Once the server runs, exec mode hands
	// them to the new image and child mode forwards them.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	runner := preflight.NewRunner(cfg.Preflight, logger, preflight.WithRecorder(m))
	err = runner.Run(ctx, preflight.Banner{
		Profile:     cfg.Profile,
		Mode:        cfg.Mode,
		PortEnv:     cfg.Server.PortEnv,
		Port:        port,
		PortFromEnv: fromEnv,
		App:         cfg.Server.App,
		Args:        launcher.BuildArgs(opts),
	})
	stop()
	if err != nil {
		logger.Error("Preflight failed, not launching", "error", err)
		return launcher.ExitCode(err)
	}

	var options []launcher.Option
	if cfg.Mode == config.ModeChild {
		mon, err := server.NewMonitor(cfg, port, m, logger)
		if err != nil {
			logger.Error("Failed to create monitor", "error", err)
			return launcher.ExitFailure
		}
		options = append(options, launcher.WithObserver(mon))
	}

	m.RecordLaunch(cfg.Mode)
	err = launcher.New(opts, logger, options...).Run(context.Background())
	code := launcher.ExitCode(err)
	if err != nil {
		logger.Error("Server launch failed", "error", err, "exit_code", code)
	}
	return code
}
