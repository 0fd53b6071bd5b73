package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stemsi/bincan-backend/internal/model"
)

// ErrExerciseNotFound is returned when no exercise has the requested id.
var ErrExerciseNotFound = errors.New("exercise not found")

// ExerciseRepository persists exercises. The blank set is written once by
// Create; later writes only replace answers and results.
type ExerciseRepository interface {
	Create(ctx context.Context, e *model.Exercise) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exercise, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, answers map[string]string, results []model.ExerciseResult) error
}
