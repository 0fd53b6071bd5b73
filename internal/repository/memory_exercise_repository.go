package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stemsi/bincan-backend/internal/model"
)

// MemoryExerciseRepository keeps exercises in process memory. Values are
// copied on the way in and out so callers never alias stored state.
type MemoryExerciseRepository struct {
	mu        sync.RWMutex
	exercises map[uuid.UUID]*model.Exercise
}

func NewMemoryExerciseRepository() *MemoryExerciseRepository {
	return &MemoryExerciseRepository{exercises: make(map[uuid.UUID]*model.Exercise)}
}

func (r *MemoryExerciseRepository) Create(_ context.Context, e *model.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exercises[e.ID] = e.Clone()
	return nil
}

func (r *MemoryExerciseRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exercises[id]
	if !ok {
		return nil, ErrExerciseNotFound
	}
	return e.Clone(), nil
}

func (r *MemoryExerciseRepository) UpdateProgress(_ context.Context, id uuid.UUID, answers map[string]string, results []model.ExerciseResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exercises[id]
	if !ok {
		return ErrExerciseNotFound
	}
	next := (&model.Exercise{Answers: answers, Results: results}).Clone()
	e.Answers = next.Answers
	e.Results = next.Results
	return nil
}

// Len returns the number of stored exercises.
func (r *MemoryExerciseRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.exercises)
}
