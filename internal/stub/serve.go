package stub

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cayecrypto/polymarket-btc-bot/internal/logging"
)

// Serve serves srv on ln until ctx is done, then shuts it down within
// shutdownTimeout.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration, logger logging.Logger) error {
	addr := ln.Addr().String()
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Stub server shutdown failed", "addr", addr, "error", err)
		return fmt.Errorf("stub server shutdown failed: %w", err)
	}
	logger.Info("Stub server stopped", "addr", addr)
	return nil
}
