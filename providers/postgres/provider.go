// Package postgres registers the "postgres" connection provider, backed by a
// pgx pool exposed through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/Konsultn-Engineering/eql/connector"
	"github.com/Konsultn-Engineering/eql/dialect"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

type Provider struct{}

func init() {
	connector.Register("postgres", &Provider{})
}

// PoolConfig translates cfg into a pgx pool configuration, applying pool
// defaults and the server-side statement timeout.
func PoolConfig(cfg connector.Config) (*pgxpool.Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// apply defaults
	if cfg.Pool.MaxOpen <= 0 {
		cfg.Pool.MaxOpen = 10
	}
	if cfg.Pool.MaxIdle < 0 {
		cfg.Pool.MaxIdle = 0
	}
	if cfg.Pool.MaxIdle > cfg.Pool.MaxOpen {
		cfg.Pool.MaxIdle = cfg.Pool.MaxOpen
	}
	if cfg.Pool.MaxLifetime == 0 {
		cfg.Pool.MaxLifetime = time.Hour
	}
	if cfg.Pool.MaxIdleTime == 0 {
		cfg.Pool.MaxIdleTime = 30 * time.Minute
	}

	dsn := connector.NewDSNBuilder("postgres").FromConfig(cfg).Build()
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.Pool.MaxOpen)
	poolCfg.MinConns = int32(cfg.Pool.MaxIdle)
	poolCfg.MaxConnLifetime = cfg.Pool.MaxLifetime
	poolCfg.MaxConnIdleTime = cfg.Pool.MaxIdleTime
	if ms := cfg.StatementTimeoutMillis(); ms != "" {
		poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = ms
	}
	return poolCfg, nil
}

func (p *Provider) Connect(ctx context.Context, cfg connector.Config) (connector.Connection, error) {
	poolCfg, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	return &connection{pool: pool, dialect: dialect.NewPostgresDialect(), url: redactedURL(cfg)}, nil
}

func redactedURL(cfg connector.Config) string {
	return connector.NewDSNBuilder("postgres").FromConfig(cfg).Redacted()
}

func (p *Provider) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

func (p *Provider) HealthCheck(ctx context.Context, conn connector.Connection) error {
	return conn.Health(ctx)
}

type connection struct {
	pool    *pgxpool.Pool
	dialect dialect.Dialect
	url     string

	once sync.Once
	db   *sql.DB
}

// DB returns a database/sql handle over the pool. The handle is created once
// so prepared statements stay cached on it.
func (c *connection) DB() *sql.DB {
	c.once.Do(func() {
		c.db = stdlib.OpenDBFromPool(c.pool)
	})
	return c.db
}

func (c *connection) Dialect() dialect.Dialect {
	return c.dialect
}

func (c *connection) URL() string {
	return c.url
}

func (c *connection) Health(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *connection) Stats() connector.ConnectionStats {
	s := c.pool.Stat()
	return connector.ConnectionStats{
		OpenConnections: int(s.TotalConns()),
		InUse:           int(s.AcquiredConns()),
		Idle:            int(s.IdleConns()),
	}
}

func (c *connection) Close() error {
	if c.db != nil {
		_ = c.db.Close()
	}
	c.pool.Close()
	return nil
}

var _ connector.Connection = (*connection)(nil)
