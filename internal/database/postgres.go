package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stemsi/bincan-backend/internal/config"
)

const (
	pgHealthCheckPeriod = 30 * time.Second
	pgMaxConnIdleTime   = 5 * time.Minute
	dialTimeout         = 5 * time.Second
)

// NewPostgresPool opens the exercise and score-history pool. Queries are
// traced at debug level through log.
func NewPostgresPool(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxDBConns
	poolCfg.MinConns = min(2, cfg.MaxDBConns)
	poolCfg.HealthCheckPeriod = pgHealthCheckPeriod
	poolCfg.MaxConnIdleTime = pgMaxConnIdleTime
	poolCfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   pgxLogger{log: log},
		LogLevel: tracelog.LogLevelDebug,
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Int32("max_conns", poolCfg.MaxConns).
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Msg("PostgreSQL connected")

	return pool, nil
}

// pgxLogger forwards pgx trace events to zerolog. Per-query events land at
// debug level.
type pgxLogger struct {
	log zerolog.Logger
}

func (l pgxLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	var ev *zerolog.Event
	switch level {
	case tracelog.LogLevelError:
		ev = l.log.Error()
	case tracelog.LogLevelWarn:
		ev = l.log.Warn()
	default:
		ev = l.log.Debug()
	}
	if sql, ok := data["sql"].(string); ok {
		ev = ev.Str("sql", sql)
	}
	if d, ok := data["time"].(time.Duration); ok {
		ev = ev.Dur("elapsed", d)
	}
	if err, ok := data["err"].(error); ok {
		ev = ev.Err(err)
	}
	ev.Str("component", "pgx").Msg(msg)
}
