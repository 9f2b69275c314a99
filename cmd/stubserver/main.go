package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cayecrypto/polymarket-btc-bot/internal/logging"
	"github.com/cayecrypto/polymarket-btc-bot/internal/stub"
)

// Stand-in for the streamlit binary: LAUNCHER_SERVER_COMMAND=stubserver.
func main() {
	settings, err := stub.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "stubserver: %v\n", err)
		os.Exit(2)
	}

	logger := logging.NewWriterLogger(os.Stdout, "info")
	ln, err := net.Listen("tcp", settings.Addr())
	if err != nil {
		logger.Error("Stub server failed to listen", "addr", settings.Addr(), "error", err)
		os.Exit(1)
	}
	srv := &http.Server{
		Handler:           stub.Handler(settings),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Stub server running", "addr", ln.Addr().String(), "script", settings.Script, "headless", settings.Headless)
	if err := stub.Serve(ctx, srv, ln, 5*time.Second, logger); err != nil {
		logger.Error("Stub server failed", "error", err)
		os.Exit(1)
	}
}
