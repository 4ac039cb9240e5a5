// Package postgres provides PostgreSQL infrastructure components.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"showalert/internal/config"
)

const pingTimeout = 2 * time.Second

// PoolConfig sizes the pgx pool of one process.
type PoolConfig struct {
	DSN string
	// AppName is reported as application_name in pg_stat_activity.
	AppName           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewPoolConfig starts from the defaults and applies every field set in
// cfg. The worker passes a smaller MaxConns than the API server.
func NewPoolConfig(appName string, cfg config.DatabaseConfig) PoolConfig {
	pc := PoolConfig{
		DSN:               cfg.DSN,
		AppName:           appName,
		MaxConns:          25,
		MinConns:          5,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: time.Minute,
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if pc.MinConns > pc.MaxConns {
		pc.MinConns = pc.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	return pc
}

func (pc PoolConfig) pgxConfig() (*pgxpool.Config, error) {
	c, err := pgxpool.ParseConfig(pc.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	c.MaxConns = pc.MaxConns
	c.MinConns = pc.MinConns
	c.MaxConnLifetime = pc.MaxConnLifetime
	c.MaxConnIdleTime = pc.MaxConnIdleTime
	c.HealthCheckPeriod = pc.HealthCheckPeriod

	if pc.AppName != "" {
		c.ConnConfig.RuntimeParams["application_name"] = pc.AppName
	}
	// every timestamp crosses the wire in UTC
	c.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET TIME ZONE 'UTC'")
		return err
	}
	return c, nil
}

// Pool is the process-wide connection pool.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects and pings once so a bad DSN fails at startup.
func NewPool(ctx context.Context, pc PoolConfig) (*Pool, error) {
	c, err := pc.pgxConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	p := &Pool{Pool: pool}
	if err := p.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return p, nil
}

// Close is safe on a zero Pool.
func (p *Pool) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

// Ping bounds the round trip so a hung database fails the readiness check
// instead of blocking it.
func (p *Pool) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Pool.Ping(ctx)
}

// PoolStats is a snapshot of pool usage for /health/info and metrics.
type PoolStats struct {
	TotalConns      int32
	AcquiredConns   int32
	IdleConns       int32
	MaxConns        int32
	AcquireCount    int64
	AcquireDuration time.Duration
}

// Stats takes a snapshot.
func (p *Pool) Stats() PoolStats {
	s := p.Stat()
	return PoolStats{
		TotalConns:      s.TotalConns(),
		AcquiredConns:   s.AcquiredConns(),
		IdleConns:       s.IdleConns(),
		MaxConns:        s.MaxConns(),
		AcquireCount:    s.AcquireCount(),
		AcquireDuration: s.AcquireDuration(),
	}
}
