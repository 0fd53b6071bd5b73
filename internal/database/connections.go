package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/bincan-backend/internal/config"
)

// Connections holds the backends the configuration asked for. Either field
// may be nil.
type Connections struct {
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

// Open connects only to the backends required by cfg.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Connections, error) {
	conns := &Connections{}

	if cfg.UsesPostgres() {
		pool, err := NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		conns.Pool = pool
	}

	if cfg.UsesRedis() {
		rdb, err := NewRedisClient(ctx, cfg, log)
		if err != nil {
			conns.Close()
			return nil, err
		}
		conns.Redis = rdb
	}

	return conns, nil
}

// Close releases whatever was opened.
func (c *Connections) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// Ping checks every open backend and returns the status per backend name.
// The returned error is non-nil when any backend is unreachable.
func (c *Connections) Ping(ctx context.Context) (map[string]string, error) {
	status := map[string]string{}
	var errs []error

	if c.Pool != nil {
		if err := c.Pool.Ping(ctx); err != nil {
			status["postgres"] = "down"
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		} else {
			status["postgres"] = "up"
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
			errs = append(errs, fmt.Errorf("redis: %w", err))
		} else {
			status["redis"] = "up"
		}
	}

	return status, errors.Join(errs...)
}
