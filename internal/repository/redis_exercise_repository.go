package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/bincan-backend/internal/config"
	"github.com/stemsi/bincan-backend/internal/model"
)

// maxWatchRetries bounds optimistic retries when two writers race on one key.
const maxWatchRetries = 5

// RedisExerciseRepository keeps each exercise as a JSON document that expires
// ttl after creation. Updates keep the remaining TTL.
type RedisExerciseRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisExerciseRepository(rdb *redis.Client, ttl time.Duration) *RedisExerciseRepository {
	return &RedisExerciseRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisExerciseRepository) Create(ctx context.Context, e *model.Exercise) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal exercise: %w", err)
	}
	ok, err := r.rdb.SetNX(ctx, config.CacheKey.ExerciseKey(e.ID.String()), raw, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("store exercise: %w", err)
	}
	if !ok {
		return fmt.Errorf("store exercise: id %s already exists", e.ID)
	}
	return nil
}

func (r *RedisExerciseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exercise, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.ExerciseKey(id.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("load exercise: %w", err)
	}
	return decodeExercise(raw)
}

func (r *RedisExerciseRepository) UpdateProgress(ctx context.Context, id uuid.UUID, answers map[string]string, results []model.ExerciseResult) error {
	key := config.CacheKey.ExerciseKey(id.String())

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrExerciseNotFound
			}
			return err
		}
		e, err := decodeExercise(raw)
		if err != nil {
			return err
		}
		e.Answers = answers
		e.Results = results

		next, err := json.Marshal(e)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, redis.KeepTTL)
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrExerciseNotFound) {
			return fmt.Errorf("update exercise progress: %w", err)
		}
		return err
	}
	return fmt.Errorf("update exercise progress: %w", redis.TxFailedErr)
}

func decodeExercise(raw []byte) (*model.Exercise, error) {
	var e model.Exercise
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode exercise: %w", err)
	}
	if e.Answers == nil {
		e.Answers = map[string]string{}
	}
	return &e, nil
}
