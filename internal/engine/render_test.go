package engine

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemsi/bincan-backend/internal/model"
)

func TestRender_GoldFillRestoresText(t *testing.T) {
	for seed := range uint64(20) {
		rng := rand.New(rand.NewPCG(seed, seed*7+1))
		for _, text := range sampleTexts {
			for _, d := range difficulties {
				blanks := SelectBlanks(text, d, rng)
				got := Render(text, blanks, func(_ int, b model.BlankItem) string { return b.Word })
				assert.Equal(t, text, got)
			}
		}
	}
}

func TestRender_Placeholders(t *testing.T) {
	text := "나는 학교에 간다"
	blanks := SelectBlanks(text, model.DifficultyAdvanced, constRand(0))

	got := Render(text, blanks, func(i int, b model.BlankItem) string {
		return fmt.Sprintf("[%d:%s]", i+1, strings.Repeat("_", b.Length))
	})
	assert.Equal(t, "[1:__] [2:___] 간다", got)
}

func TestRender_SkipsBadSpans(t *testing.T) {
	text := "하나 둘"
	blanks := []model.BlankItem{
		{ID: "blank_1", Position: 3, Word: "둘", Length: 1},
		{ID: "blank_x", Position: 2, Word: "x", Length: 5},
		{ID: "blank_0", Position: 0, Word: "하나", Length: 2},
		{ID: "blank_y", Position: 1, Word: "나", Length: 1},
	}

	got := Render(text, blanks, func(_ int, b model.BlankItem) string { return "<" + b.ID + ">" })
	assert.Equal(t, "<blank_0> <blank_1>", got)
}
