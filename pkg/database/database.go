// Package database owns the PostgreSQL connection pool and ties its
// startup ping and shutdown close to the lifecycle coordinator.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tavtun/docsys/pkg/lifecycle"
)

// System manages the pool and reports its health.
type System interface {
	Connection() *sql.DB
	// Ready reports whether the startup ping succeeded.
	Ready() bool
	// Check pings the pool. It returns ErrNotReady before startup completes.
	Check(ctx context.Context) error
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
	ready       atomic.Bool
}

// New builds the pool from cfg without connecting and registers pool
// statistics with the default Prometheus registry.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	connCfg, err := pgx.ParseConfig(cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("parse connection: %w", err)
	}
	connCfg.ConnectTimeout = cfg.ConnTimeoutDuration()
	if cfg.ApplicationName != "" {
		connCfg.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	db := stdlib.OpenDB(*connCfg)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	logger = logger.With("system", "database")

	err = prometheus.Register(collectors.NewDBStatsCollector(db, cfg.Name))
	var dup prometheus.AlreadyRegisteredError
	if err != nil && !errors.As(err, &dup) {
		logger.Warn("pool metrics not registered", "error", err)
	}

	return &database{
		conn:        db,
		logger:      logger,
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Ready() bool {
	return d.ready.Load()
}

func (d *database) Check(ctx context.Context) error {
	if !d.ready.Load() {
		return ErrNotReady
	}
	ctx, cancel := context.WithTimeout(ctx, d.connTimeout)
	defer cancel()
	return d.conn.PingContext(ctx)
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), d.connTimeout)
		defer cancel()

		if err := d.conn.PingContext(ctx); err != nil {
			d.logger.Error("startup ping failed", "error", err)
			return
		}

		d.ready.Store(true)
		d.logger.Info("connected")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.ready.Store(false)

		if err := d.conn.Close(); err != nil {
			d.logger.Error("close failed", "error", err)
			return
		}
		d.logger.Info("pool closed")
	})

	return nil
}
