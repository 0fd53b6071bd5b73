package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/bincan-backend/internal/model"
)

// PostgresExerciseRepository stores exercises in the exercises table with
// blanks, answers and results as JSONB columns.
type PostgresExerciseRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresExerciseRepository(pool *pgxpool.Pool) *PostgresExerciseRepository {
	return &PostgresExerciseRepository{pool: pool}
}

func (r *PostgresExerciseRepository) Create(ctx context.Context, e *model.Exercise) error {
	c := e.Clone()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exercises (id, original_text, category, difficulty, blanks, answers, results, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.OriginalText, string(c.Category), string(c.Difficulty),
		nonNilBlanks(c.Blanks), c.Answers, nonNilResults(c.Results), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert exercise: %w", err)
	}
	return nil
}

func (r *PostgresExerciseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exercise, error) {
	var (
		e          model.Exercise
		category   string
		difficulty string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, original_text, category, difficulty, blanks, answers, results, created_at
		 FROM exercises WHERE id = $1`, id,
	).Scan(&e.ID, &e.OriginalText, &category, &difficulty, &e.Blanks, &e.Answers, &e.Results, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("select exercise: %w", err)
	}
	e.Category = model.Category(category)
	e.Difficulty = model.Difficulty(difficulty)
	if e.Answers == nil {
		e.Answers = map[string]string{}
	}
	return &e, nil
}

func (r *PostgresExerciseRepository) UpdateProgress(ctx context.Context, id uuid.UUID, answers map[string]string, results []model.ExerciseResult) error {
	if answers == nil {
		answers = map[string]string{}
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE exercises SET answers = $2, results = $3, updated_at = NOW() WHERE id = $1`,
		id, answers, nonNilResults(results),
	)
	if err != nil {
		return fmt.Errorf("update exercise progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func nonNilBlanks(b []model.BlankItem) []model.BlankItem {
	if b == nil {
		return []model.BlankItem{}
	}
	return b
}

func nonNilResults(r []model.ExerciseResult) []model.ExerciseResult {
	if r == nil {
		return []model.ExerciseResult{}
	}
	return r
}
