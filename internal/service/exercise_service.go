package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/bincan-backend/internal/catalog"
	"github.com/stemsi/bincan-backend/internal/engine"
	"github.com/stemsi/bincan-backend/internal/model"
	"github.com/stemsi/bincan-backend/internal/repository"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrBlankNotFound    = errors.New("blank not found")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrHistoryDisabled  = errors.New("score history is disabled")
)

// ScoreSink receives a snapshot after every batch grading call.
type ScoreSink interface {
	Record(ctx context.Context, rec model.ScoreRecord) error
}

// ScoreHistory reads past batch grading snapshots.
type ScoreHistory interface {
	ListByExercise(ctx context.Context, exerciseID uuid.UUID) ([]model.ScoreRecord, error)
}

// ExerciseService owns the exercise lifecycle: blank generation on create,
// instant and batch grading, retry and hints.
type ExerciseService struct {
	repo    repository.ExerciseRepository
	catalog *catalog.Catalog
	sink    ScoreSink
	history ScoreHistory
	rng     engine.Rand
	locks   *keyedMutex
	now     func() time.Time
	log     zerolog.Logger
}

// NewExerciseService wires the service. sink and history may be nil when
// score history is disabled.
func NewExerciseService(
	repo repository.ExerciseRepository,
	cat *catalog.Catalog,
	sink ScoreSink,
	history ScoreHistory,
	log zerolog.Logger,
) *ExerciseService {
	return &ExerciseService{
		repo:    repo,
		catalog: cat,
		sink:    sink,
		history: history,
		rng:     engine.DefaultRand,
		locks:   newKeyedMutex(),
		now:     func() time.Time { return time.Now().UTC() },
		log:     log.With().Str("component", "exercise_service").Logger(),
	}
}

// WithRand replaces the blank selection random source.
func (s *ExerciseService) WithRand(rng engine.Rand) *ExerciseService {
	s.rng = rng
	return s
}

// Create builds an exercise from free text and stores it with its blanks.
func (s *ExerciseService) Create(ctx context.Context, req model.CreateExerciseRequest) (*model.Exercise, error) {
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.DefaultDifficulty
	}

	e := &model.Exercise{
		ID:           uuid.New(),
		OriginalText: req.OriginalText,
		Category:     req.Category,
		Difficulty:   difficulty,
		Blanks:       engine.SelectBlanks(req.OriginalText, difficulty, s.rng),
		Answers:      map[string]string{},
		Results:      []model.ExerciseResult{},
		CreatedAt:    s.now(),
	}

	if err := s.repo.Create(ctx, e); err != nil {
		s.log.Error().Err(err).Msg("failed to store exercise")
		return nil, err
	}

	s.log.Info().
		Str("exercise_id", e.ID.String()).
		Str("difficulty", string(difficulty)).
		Int("words", engine.WordCount(e.OriginalText)).
		Int("blanks", len(e.Blanks)).
		Msg("Exercise created")

	return e, nil
}

// CreateFromCategory builds an exercise from the catalog text of a category.
func (s *ExerciseService) CreateFromCategory(ctx context.Context, req model.CreateFromCategoryRequest) (*model.Exercise, error) {
	entry, err := s.catalog.Get(req.Category)
	if err != nil {
		return nil, ErrUnknownCategory
	}
	return s.Create(ctx, model.CreateExerciseRequest{
		OriginalText: entry.Content,
		Category:     req.Category,
		Difficulty:   req.Difficulty,
	})
}

// Get returns the current snapshot of an exercise.
func (s *ExerciseService) Get(ctx context.Context, id uuid.UUID) (*model.Exercise, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrExerciseNotFound) {
			return nil, ErrExerciseNotFound
		}
		s.log.Error().Err(err).Str("exercise_id", id.String()).Msg("failed to load exercise")
		return nil, err
	}
	return e, nil
}

// SubmitAnswer stores one answer and grades only that blank. Stored results
// from an earlier batch grading are left untouched.
func (s *ExerciseService) SubmitAnswer(ctx context.Context, id uuid.UUID, blankID, answer string) (model.ExerciseResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	e, err := s.Get(ctx, id)
	if err != nil {
		return model.ExerciseResult{}, err
	}

	blank, ok := e.Blank(blankID)
	if !ok {
		return model.ExerciseResult{}, ErrBlankNotFound
	}

	e.Answers[blankID] = answer
	if err := s.repo.UpdateProgress(ctx, id, e.Answers, e.Results); err != nil {
		return model.ExerciseResult{}, s.storeErr(id, err)
	}

	return engine.GradeOne(blank, answer), nil
}

// GradeBatch replaces all stored answers, grades every blank and stores the
// results.
func (s *ExerciseService) GradeBatch(ctx context.Context, id uuid.UUID, answers map[string]string) (*model.GradeResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	replaced := make(map[string]string, len(answers))
	for k, v := range answers {
		replaced[k] = v
	}
	return s.grade(ctx, e, replaced)
}

// GradeStored grades every blank against the answers already stored, as
// submitted one at a time in instant mode.
func (s *ExerciseService) GradeStored(ctx context.Context, id uuid.UUID) (*model.GradeResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.grade(ctx, e, e.Answers)
}

func (s *ExerciseService) grade(ctx context.Context, e *model.Exercise, answers map[string]string) (*model.GradeResult, error) {
	results := engine.Grade(e.Blanks, answers)
	if err := s.repo.UpdateProgress(ctx, e.ID, answers, results); err != nil {
		return nil, s.storeErr(e.ID, err)
	}

	score := engine.Score(results)
	s.recordScore(ctx, e, score)

	s.log.Info().
		Str("exercise_id", e.ID.String()).
		Int("correct", score.Correct).
		Int("total", score.Total).
		Int("percentage", score.Percentage).
		Msg("Exercise graded")

	return &model.GradeResult{Results: results, Score: score}, nil
}

func (s *ExerciseService) recordScore(ctx context.Context, e *model.Exercise, score model.Score) {
	if s.sink == nil {
		return
	}
	rec := model.ScoreRecord{
		ExerciseID: e.ID,
		Category:   e.Category,
		Difficulty: e.Difficulty,
		Correct:    score.Correct,
		Incorrect:  score.Incorrect,
		Total:      score.Total,
		Percentage: score.Percentage,
		GradedAt:   s.now(),
	}
	if err := s.sink.Record(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("exercise_id", e.ID.String()).Msg("failed to record score")
	}
}

// Reset clears answers and results for a retry. The blank set is kept.
func (s *ExerciseService) Reset(ctx context.Context, id uuid.UUID) (*model.Exercise, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	e.Answers = map[string]string{}
	e.Results = []model.ExerciseResult{}
	if err := s.repo.UpdateProgress(ctx, id, e.Answers, e.Results); err != nil {
		return nil, s.storeErr(id, err)
	}
	return e, nil
}

// Hint returns a partial reveal for one blank.
func (s *ExerciseService) Hint(ctx context.Context, id uuid.UUID, blankID string) (model.Hint, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return model.Hint{}, err
	}
	blank, ok := e.Blank(blankID)
	if !ok {
		return model.Hint{}, ErrBlankNotFound
	}
	return engine.Hint(blank), nil
}

// History lists past batch grading snapshots of an exercise.
func (s *ExerciseService) History(ctx context.Context, id uuid.UUID) ([]model.ScoreRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.history.ListByExercise(ctx, id)
}

// Catalog returns every curriculum text.
func (s *ExerciseService) Catalog() []model.Content {
	return s.catalog.All()
}

// CatalogEntry returns the curriculum text of one category.
func (s *ExerciseService) CatalogEntry(cat model.Category) (model.Content, error) {
	entry, err := s.catalog.Get(cat)
	if err != nil {
		return model.Content{}, ErrUnknownCategory
	}
	return entry, nil
}

func (s *ExerciseService) storeErr(id uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrExerciseNotFound) {
		return ErrExerciseNotFound
	}
	s.log.Error().Err(err).Str("exercise_id", id.String()).Msg("failed to update exercise")
	return fmt.Errorf("update exercise %s: %w", id, err)
}

// ─── Per-exercise locking ───────────────────────────────────────────

// keyedMutex serialises read-modify-write sequences on one exercise while
// letting different exercises proceed in parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uuid.UUID]*refLock)}
}

// Lock blocks until id is free and returns the matching unlock function.
func (k *keyedMutex) Lock(id uuid.UUID) func() {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &refLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
