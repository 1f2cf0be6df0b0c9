// Package postgres stores room exports in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/roomshelper/internal/config"
)

// applicationName is reported for every connection in pg_stat_activity.
const applicationName = "roomshelper"

// Pool owns the pgx connection pool shared by the room repository.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to PostgreSQL and verifies the connection with a ping.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	return &Pool{pool: pool}, nil
}

// Health checks that the database answers within timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Watch pings the database every interval until ctx is cancelled, logging
// failed checks and the first check after a recovery.
//
// Postcondition: Returns nil when ctx is done.
func (p *Pool) Watch(ctx context.Context, interval time.Duration, logger *zap.Logger) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	healthy := true
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			err := p.Health(ctx, interval/2)
			switch {
			case err != nil && ctx.Err() == nil:
				healthy = false
				logger.Warn("database health check failed", zap.Error(err))
			case err == nil && !healthy:
				healthy = true
				logger.Info("database reachable again")
			}
		}
	}
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
