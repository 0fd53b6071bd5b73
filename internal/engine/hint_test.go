package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemsi/bincan-backend/internal/model"
)

func TestHint_WithParticle(t *testing.T) {
	h := Hint(model.BlankItem{ID: "blank_3", Word: "학교를", Length: 3})

	assert.Equal(t, "blank_3", h.BlankID)
	assert.Equal(t, "학", h.FirstLetter)
	assert.Equal(t, 3, h.Length)
	assert.Equal(t, "를", h.Particle)
	assert.Equal(t, LevelIntermediate, h.Level)
	assert.Equal(t, "첫 글자: 학, 글자 수: 3자, 조사: 를", h.Text)
}

func TestHint_WithoutParticle(t *testing.T) {
	h := Hint(model.BlankItem{ID: "blank_0", Word: "인공지능", Length: 4})

	assert.Empty(t, h.Particle)
	assert.Equal(t, "첫 글자: 인, 글자 수: 4자", h.Text)
}

func TestWordLevel(t *testing.T) {
	assert.Equal(t, LevelBasic, WordLevel("AI"))
	assert.Equal(t, LevelBasic, WordLevel("학교"))
	assert.Equal(t, LevelIntermediate, WordLevel("컴퓨터"))
	assert.Equal(t, LevelIntermediate, WordLevel("알고리즘"))
	assert.Equal(t, LevelAdvanced, WordLevel("알고리즘을"))
}
