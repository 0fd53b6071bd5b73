package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/bincan-backend/internal/model"
)

// ScoreRepository persists batch grading snapshots in exercise_scores.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// InsertBatch writes all records in a single statement using UNNEST.
func (r *ScoreRepository) InsertBatch(ctx context.Context, records []model.ScoreRecord) error {
	if len(records) == 0 {
		return nil
	}

	n := len(records)
	exerciseIDs := make([]uuid.UUID, 0, n)
	categories := make([]string, 0, n)
	difficulties := make([]string, 0, n)
	corrects := make([]int32, 0, n)
	incorrects := make([]int32, 0, n)
	totals := make([]int32, 0, n)
	percentages := make([]int32, 0, n)
	gradedAts := make([]time.Time, 0, n)

	for _, rec := range records {
		exerciseIDs = append(exerciseIDs, rec.ExerciseID)
		categories = append(categories, string(rec.Category))
		difficulties = append(difficulties, string(rec.Difficulty))
		corrects = append(corrects, int32(rec.Correct))
		incorrects = append(incorrects, int32(rec.Incorrect))
		totals = append(totals, int32(rec.Total))
		percentages = append(percentages, int32(rec.Percentage))
		gradedAts = append(gradedAts, rec.GradedAt)
	}

	query := `
		INSERT INTO exercise_scores
			(exercise_id, category, difficulty, correct, incorrect, total, percentage, graded_at)
		SELECT u.exercise_id, u.category, u.difficulty, u.correct, u.incorrect, u.total, u.percentage, u.graded_at
		FROM UNNEST(
			$1::uuid[],
			$2::varchar[],
			$3::varchar[],
			$4::int[],
			$5::int[],
			$6::int[],
			$7::int[],
			$8::timestamptz[]
		) AS u (exercise_id, category, difficulty, correct, incorrect, total, percentage, graded_at)
	`

	if _, err := r.pool.Exec(ctx, query,
		exerciseIDs, categories, difficulties, corrects, incorrects, totals, percentages, gradedAts,
	); err != nil {
		return fmt.Errorf("bulk insert scores: %w", err)
	}
	return nil
}

// Insert writes a single record.
func (r *ScoreRepository) Insert(ctx context.Context, rec model.ScoreRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exercise_scores
			(exercise_id, category, difficulty, correct, incorrect, total, percentage, graded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ExerciseID, string(rec.Category), string(rec.Difficulty),
		rec.Correct, rec.Incorrect, rec.Total, rec.Percentage, rec.GradedAt,
	)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

// ListByExercise returns the grading history of one exercise, newest first.
func (r *ScoreRepository) ListByExercise(ctx context.Context, exerciseID uuid.UUID) ([]model.ScoreRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT exercise_id, category, difficulty, correct, incorrect, total, percentage, graded_at
		 FROM exercise_scores WHERE exercise_id = $1
		 ORDER BY graded_at DESC`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	records := []model.ScoreRecord{}
	for rows.Next() {
		var (
			rec        model.ScoreRecord
			category   string
			difficulty string
		)
		if err := rows.Scan(&rec.ExerciseID, &category, &difficulty,
			&rec.Correct, &rec.Incorrect, &rec.Total, &rec.Percentage, &rec.GradedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		rec.Category = model.Category(category)
		rec.Difficulty = model.Difficulty(difficulty)
		records = append(records, rec)
	}
	return records, rows.Err()
}
