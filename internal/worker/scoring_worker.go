package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/bincan-backend/internal/config"
	"github.com/stemsi/bincan-backend/internal/model"
)

const (
	ScoreBatchSize    = 50
	ScoreBatchTimeout = 2 * time.Second
	ScorePollTimeout  = 1 * time.Second
)

// ScoreWriter is the persistence side of the scoring worker.
type ScoreWriter interface {
	InsertBatch(ctx context.Context, records []model.ScoreRecord) error
	Insert(ctx context.Context, rec model.ScoreRecord) error
}

// ScoreQueue pushes grading snapshots onto the Redis list drained by
// ScoringWorker.
type ScoreQueue struct {
	rdb *redis.Client
}

func NewScoreQueue(rdb *redis.Client) *ScoreQueue {
	return &ScoreQueue{rdb: rdb}
}

// Record enqueues rec for asynchronous persistence.
func (q *ScoreQueue) Record(ctx context.Context, rec model.ScoreRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue score: %w", err)
	}
	return nil
}

// Depth returns the number of records waiting to be persisted.
func (q *ScoreQueue) Depth(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, config.WorkerKey.PersistScoresQueue).Result()
}

type ScoringWorker struct {
	store ScoreWriter
	rdb   *redis.Client
	log   zerolog.Logger
}

func NewScoringWorker(store ScoreWriter, rdb *redis.Client, log zerolog.Logger) *ScoringWorker {
	return &ScoringWorker{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "scoring_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ScoringWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ScoringWorker started")

	batch := make([]model.ScoreRecord, 0, ScoreBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ScoreBatchSize || time.Since(lastFlush) >= ScoreBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ScorePollTimeout, config.WorkerKey.PersistScoresQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var rec model.ScoreRecord
			if err := json.Unmarshal([]byte(item[1]), &rec); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, rec)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with per-record fallback
// ----------------------------------------------------------------

func (w *ScoringWorker) flushSafe(ctx context.Context, batch []model.ScoreRecord) {
	if len(batch) == 0 {
		return
	}

	err := w.store.InsertBatch(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Scores persisted")
		return
	}

	w.log.Warn().Err(err).Msg("bulk score insert failed, using fallback")

	for _, rec := range batch {
		if err := w.store.Insert(ctx, rec); err != nil {
			w.log.Error().Err(err).Str("exercise_id", rec.ExerciseID.String()).Msg("score insert failed, requeueing")
			raw, _ := json.Marshal(rec)
			w.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, raw)
		}
	}
}
