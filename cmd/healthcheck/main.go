package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cayecrypto/polymarket-btc-bot/internal/config"
	"github.com/cayecrypto/polymarket-btc-bot/pkg/health"
	"github.com/cayecrypto/polymarket-btc-bot/pkg/launcher"
)

// Container HEALTHCHECK: probes the server on the same port the launcher
// resolved, exits 0 when healthy and 1 otherwise.
func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	cfg, err := config.NewConfig(args)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	port, _ := launcher.ResolvePort(os.LookupEnv, cfg.Server.PortEnv, cfg.Server.DefaultPort)
	url := health.LocalURL(port) + cfg.Health.Path

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Health.Timeout)
	defer cancel()

	if err := health.Probe(ctx, health.NewClient(cfg.Health.Timeout), url); err != nil {
		fmt.Fprintf(stderr, "unhealthy: %s: %v\n", url, err)
		return 1
	}
	return 0
}
