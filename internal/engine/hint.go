package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/stemsi/bincan-backend/internal/model"
)

const (
	LevelBasic        = "basic"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// WordLevel classifies a gold word by length.
func WordLevel(word string) string {
	switch n := utf8.RuneCountInString(word); {
	case n <= 2:
		return LevelBasic
	case n <= 4:
		return LevelIntermediate
	default:
		return LevelAdvanced
	}
}

// Hint builds the partial reveal shown when a learner asks for help on a blank.
func Hint(blank model.BlankItem) model.Hint {
	first, _ := utf8.DecodeRuneInString(blank.Word)
	length := utf8.RuneCountInString(blank.Word)
	h := model.Hint{
		BlankID:     blank.ID,
		FirstLetter: string(first),
		Length:      length,
		Particle:    TrailingParticle(blank.Word),
		Level:       WordLevel(blank.Word),
	}

	parts := []string{
		"첫 글자: " + h.FirstLetter,
		fmt.Sprintf("글자 수: %d자", length),
	}
	if h.Particle != "" {
		parts = append(parts, "조사: "+h.Particle)
	}
	h.Text = strings.Join(parts, ", ")
	return h
}
