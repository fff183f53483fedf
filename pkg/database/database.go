// Package database opens the PostgreSQL pool used by every repository and
// ties it to the service lifecycle.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/garunski/applymonitor/pkg/lifecycle"
)

// System exposes the shared connection pool.
type System interface {
	// Connection returns the pool. It is safe for concurrent use.
	Connection() *sql.DB
	// Start pings the server during startup and closes the pool on shutdown.
	Start(lc *lifecycle.Coordinator) error
	// Check pings the server within the configured connect timeout.
	// Failures wrap ErrNotReady.
	Check(ctx context.Context) error
}

type database struct {
	pool        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
}

// New parses the connection settings and prepares the pool without
// contacting the server.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	connCfg, err := pgx.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("parse connection config: %w", err)
	}
	connCfg.ConnectTimeout = cfg.ConnTimeoutDuration()

	pool := stdlib.OpenDB(*connCfg)
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		pool:        pool,
		logger:      logger.With("system", "database", "host", connCfg.Host, "db", connCfg.Database),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.pool
}

func (d *database) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.connTimeout)
	defer cancel()

	if err := d.pool.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup("database", func(ctx context.Context) error {
		if err := d.Check(ctx); err != nil {
			d.logger.Error("database unreachable", "error", err)
			return err
		}
		d.logger.Info("database reachable")
		return nil
	})

	lc.OnShutdown("database", func(context.Context) error {
		if err := d.pool.Close(); err != nil {
			return fmt.Errorf("close pool: %w", err)
		}
		d.logger.Info("database pool closed")
		return nil
	})

	return nil
}
