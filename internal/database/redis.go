package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/bincan-backend/internal/config"
)

// slowCommand is the latency above which a Redis command is logged.
const slowCommand = 50 * time.Millisecond

// NewRedisClient opens the client used by the redis exercise store and the
// score queue.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opt.DialTimeout = dialTimeout

	rdb := redis.NewClient(opt)
	rdb.AddHook(slowLogHook{log: log.With().Str("component", "redis").Logger()})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Redis connected")

	return rdb, nil
}

// slowLogHook warns about commands slower than slowCommand. Blocking pops
// are expected to wait and are ignored.
type slowLogHook struct {
	log zerolog.Logger
}

func (h slowLogHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h slowLogHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		if elapsed := time.Since(start); elapsed > slowCommand && cmd.Name() != "blpop" {
			h.log.Warn().Str("cmd", cmd.Name()).Dur("elapsed", elapsed).Msg("Slow redis command")
		}
		return err
	}
}

func (h slowLogHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		if elapsed := time.Since(start); elapsed > slowCommand {
			h.log.Warn().Int("cmds", len(cmds)).Dur("elapsed", elapsed).Msg("Slow redis pipeline")
		}
		return err
	}
}
