package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Difficulty controls how many tokens of a text become blanks.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// DefaultDifficulty is used when a request does not name one.
const DefaultDifficulty = DifficultyAdvanced

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// ExerciseStatus is derived from the exercise contents and never stored.
type ExerciseStatus string

const (
	StatusCreated        ExerciseStatus = "created"
	StatusBlanksAssigned ExerciseStatus = "blanks_assigned"
	StatusAnswering      ExerciseStatus = "answering"
	StatusGraded         ExerciseStatus = "graded"
)

// BlankItem is one hidden word inside an exercise text.
// Position and Length are counted in Unicode code points. JavaScript string
// indexes count UTF-16 units, so a client must convert (Array.from(text))
// when the text holds characters outside the BMP such as emoji.
type BlankItem struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Word     string `json:"word"`
	Length   int    `json:"length"`
}

// ExerciseResult is the grading outcome for a single blank.
type ExerciseResult struct {
	BlankID       string `json:"blankId"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Feedback      string `json:"feedback,omitempty"`
}

// Exercise is a text with its immutable blank set and the learner's progress.
type Exercise struct {
	ID           uuid.UUID         `json:"id"`
	OriginalText string            `json:"originalText"`
	Category     Category          `json:"category,omitempty"`
	Difficulty   Difficulty        `json:"difficulty"`
	Blanks       []BlankItem       `json:"blanks"`
	Answers      map[string]string `json:"answers"`
	Results      []ExerciseResult  `json:"results"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// Status derives the lifecycle state from the stored fields.
func (e *Exercise) Status() ExerciseStatus {
	switch {
	case len(e.Results) > 0:
		return StatusGraded
	case len(e.Answers) > 0:
		return StatusAnswering
	case len(e.Blanks) > 0:
		return StatusBlanksAssigned
	default:
		return StatusCreated
	}
}

// Blank returns the blank with the given id.
func (e *Exercise) Blank(id string) (BlankItem, bool) {
	for _, b := range e.Blanks {
		if b.ID == id {
			return b, true
		}
	}
	return BlankItem{}, false
}

// Clone returns a deep copy so callers never share maps or slices with a store.
func (e *Exercise) Clone() *Exercise {
	if e == nil {
		return nil
	}
	c := *e
	c.Blanks = append([]BlankItem(nil), e.Blanks...)
	c.Results = append([]ExerciseResult(nil), e.Results...)
	c.Answers = make(map[string]string, len(e.Answers))
	for k, v := range e.Answers {
		c.Answers[k] = v
	}
	return &c
}

// MarshalJSON adds the derived status to the wire shape.
func (e Exercise) MarshalJSON() ([]byte, error) {
	type plain Exercise
	p := plain(e)
	if p.Blanks == nil {
		p.Blanks = []BlankItem{}
	}
	if p.Answers == nil {
		p.Answers = map[string]string{}
	}
	if p.Results == nil {
		p.Results = []ExerciseResult{}
	}
	return json.Marshal(struct {
		plain
		Status ExerciseStatus `json:"status"`
	}{p, e.Status()})
}

// Score aggregates a set of results.
type Score struct {
	Correct    int `json:"correct"`
	Incorrect  int `json:"incorrect"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// GradeResult is returned from a batch grading call.
type GradeResult struct {
	Results []ExerciseResult `json:"results"`
	Score   Score            `json:"score"`
}

// Hint gives partial information about a blank without revealing it.
type Hint struct {
	BlankID     string `json:"blankId"`
	FirstLetter string `json:"firstLetter"`
	Length      int    `json:"length"`
	Particle    string `json:"particle,omitempty"`
	Level       string `json:"level"`
	Text        string `json:"text"`
}

// ─── Requests ───────────────────────────────────────────────────────

// CreateExerciseRequest is the payload for creating an exercise from free text.
type CreateExerciseRequest struct {
	OriginalText string     `json:"originalText" binding:"required,nonblank,max=20000"`
	Category     Category   `json:"category" binding:"omitempty,category"`
	Difficulty   Difficulty `json:"difficulty" binding:"omitempty,difficulty"`
}

// CreateFromCategoryRequest creates an exercise from a catalog text.
type CreateFromCategoryRequest struct {
	Category   Category   `json:"category" binding:"required,category"`
	Difficulty Difficulty `json:"difficulty" binding:"omitempty,difficulty"`
}

// SubmitAnswerRequest grades a single blank in instant mode.
type SubmitAnswerRequest struct {
	BlankID string `json:"blankId" binding:"required,max=64"`
	Answer  string `json:"answer" binding:"max=200"`
}

// GradeExerciseRequest grades every blank in batch mode.
type GradeExerciseRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}
