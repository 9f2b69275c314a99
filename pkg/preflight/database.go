package preflight

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

func (r *Runner) probeDatabase(ctx context.Context) error {
	url, ok := r.lookup(r.cfg.DatabaseURLEnv)
	if !ok || url == "" {
		r.logger.Info("Database URL not set, skipping probe", "env", r.cfg.DatabaseURLEnv)
		return nil
	}

	if r.cfg.DatabaseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.DatabaseTimeout)
		defer cancel()
	}

	if err := r.ping(ctx, url); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseProbe, err)
	}
	r.logger.Info("Database reachable", "env", r.cfg.DatabaseURLEnv)
	return nil
}

// pingDatabase opens a single connection and pings it. The URL is never
// included in errors or logs since it carries credentials.
func pingDatabase(ctx context.Context, url string) error {
	cfg, err := pgx.ParseConfig(url)
	if err != nil {
		return errors.New("invalid database URL")
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Database, err)
	}
	defer conn.Close(context.Background())

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Database, err)
	}
	return nil
}
