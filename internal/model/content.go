package model

import (
	"time"

	"github.com/google/uuid"
)

// Category identifies a curriculum text in the content catalog.
type Category string

const (
	CategoryMiddleSchoolInfo       Category = "middle_school_info"
	CategoryHighSchoolInfo         Category = "high_school_info"
	CategoryAIBasics               Category = "ai_basics"
	CategoryMiddleSchoolCurriculum Category = "middle_school_curriculum"
	CategoryHighSchoolCurriculum   Category = "high_school_curriculum"
	CategoryAIBasicsCurriculum     Category = "ai_basics_curriculum"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryMiddleSchoolInfo,
	CategoryHighSchoolInfo,
	CategoryAIBasics,
	CategoryMiddleSchoolCurriculum,
	CategoryHighSchoolCurriculum,
	CategoryAIBasicsCurriculum,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Content is one catalog entry.
type Content struct {
	Category    Category `json:"category" yaml:"-"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Content     string   `json:"content" yaml:"content"`
}

// ScoreRecord is a persisted snapshot of one batch grading call.
type ScoreRecord struct {
	ExerciseID uuid.UUID  `json:"exercise_id"`
	Category   Category   `json:"category,omitempty"`
	Difficulty Difficulty `json:"difficulty"`
	Correct    int        `json:"correct"`
	Incorrect  int        `json:"incorrect"`
	Total      int        `json:"total"`
	Percentage int        `json:"percentage"`
	GradedAt   time.Time  `json:"graded_at"`
}
