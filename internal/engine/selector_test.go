package engine

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/bincan-backend/internal/model"
)

type constRand float64

func (c constRand) Float64() float64 { return float64(c) }

var difficulties = []model.Difficulty{
	model.DifficultyBeginner,
	model.DifficultyIntermediate,
	model.DifficultyAdvanced,
}

var sampleTexts = []string{
	"나는 학교에 간다",
	"컴퓨터는 데이터를 입력받아 처리하고 그 결과를 출력하는 장치이다.\n\n" +
		"알고리즘은 문제를 해결하기 위한   절차를 단계적으로 나타낸 것이다.",
	"  \"인공지능\"은 사람의 학습 능력과 추론 능력을 컴퓨터로 구현한 기술이다.  \n" +
		"\t기계학습은 데이터에서 규칙을 스스로 찾아낸다.\n   \n" +
		"딥러닝은 인공신경망을 여러 층으로 쌓아 복잡한 패턴을 학습한다!",
	"은 는 이 가 을 를 에 의 도 만",
	"",
}

func TestSelectBlanks_Scenario(t *testing.T) {
	blanks := SelectBlanks("나는 학교에 간다", model.DifficultyAdvanced, nil)

	require.Len(t, blanks, 2, "floor(3 * 0.95) caps the set")
	assert.Equal(t, model.BlankItem{ID: "blank_0", Position: 0, Word: "나는", Length: 2}, blanks[0])
	assert.Equal(t, model.BlankItem{ID: "blank_1", Position: 3, Word: "학교에", Length: 3}, blanks[1])
}

func TestSelectBlanks_OffsetsParticlesAndBound(t *testing.T) {
	for seed := uint64(1); seed <= 40; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*7))
		for _, text := range sampleTexts {
			for _, d := range difficulties {
				blanks := SelectBlanks(text, d, rng)

				assert.LessOrEqual(t, len(blanks), TargetBlankCount(WordCount(text), d))

				ids := map[string]bool{}
				positions := map[int]bool{}
				lastPos := -1
				for _, b := range blanks {
					assert.Equal(t, b.Word, runeSlice(text, b.Position, b.Length), "seed %d %s", seed, d)
					assert.False(t, IsParticle(b.Word))
					assert.False(t, ids[b.ID], "duplicate id %s", b.ID)
					assert.False(t, positions[b.Position], "duplicate position %d", b.Position)
					assert.Greater(t, b.Position, lastPos, "blanks must follow text order")
					ids[b.ID] = true
					positions[b.Position] = true
					lastPos = b.Position
				}
			}
		}
	}
}

func TestSelectBlanks_AdvancedCoverage(t *testing.T) {
	words := []string{
		"컴퓨터", "데이터", "알고리즘", "프로그램", "변수", "함수", "조건문", "반복문",
		"자료구조", "배열", "정렬", "탐색", "네트워크", "인터넷", "보안", "암호",
		"인공지능", "기계학습", "센서", "로봇",
	}
	text := strings.Join(words, " ")

	blanks := SelectBlanks(text, model.DifficultyAdvanced, rand.New(rand.NewPCG(3, 4)))

	assert.Len(t, blanks, 19)
	assert.GreaterOrEqual(t, float64(len(blanks))/float64(len(words)), 0.8)
}

func TestSelectBlanks_QuotedWordSkipped(t *testing.T) {
	text := "“알고리즘” 절차를 컴퓨터가 실행한다."
	blanks := SelectBlanks(text, model.DifficultyAdvanced, nil)

	require.Len(t, blanks, 3)
	assert.Equal(t, model.BlankItem{ID: "blank_1", Position: 7, Word: "절차를", Length: 3}, blanks[0])
	assert.Equal(t, "실행한다", blanks[2].Word)
	for _, b := range blanks {
		assert.Equal(t, b.Word, runeSlice(text, b.Position, b.Length))
	}
}

func TestSelectBlanks_LeadingPunctuationIneligible(t *testing.T) {
	blanks := SelectBlanks("\"학교\" (친구 선생님", model.DifficultyAdvanced, nil)

	require.Len(t, blanks, 1)
	assert.Equal(t, model.BlankItem{ID: "blank_2", Position: 9, Word: "선생님", Length: 3}, blanks[0])
}

func TestSelectBlanks_BeginnerSkipsFunctionalWords(t *testing.T) {
	blanks := SelectBlanks("공부하다 학교 친구 선생님 교실", model.DifficultyBeginner, constRand(0))

	require.Len(t, blanks, 1)
	assert.Equal(t, "학교", blanks[0].Word)
	assert.Equal(t, "blank_1", blanks[0].ID)
}

func TestSelectBlanks_BeginnerRollsFail(t *testing.T) {
	blanks := SelectBlanks("학교 친구 선생님 교실 운동장", model.DifficultyBeginner, constRand(0.99))
	assert.Empty(t, blanks)
}

func TestSelectBlanks_IntermediateFunctionalProbability(t *testing.T) {
	blanks := SelectBlanks("있다 학교 친구 가방", model.DifficultyIntermediate, constRand(0.5))

	require.Len(t, blanks, 2)
	assert.Equal(t, "학교", blanks[0].Word)
	assert.Equal(t, "친구", blanks[1].Word)

	blanks = SelectBlanks("있다 학교 친구 가방", model.DifficultyIntermediate, constRand(0.1))
	require.Len(t, blanks, 2)
	assert.Equal(t, "있다", blanks[0].Word)
}

func TestSelectBlanks_SeededIsDeterministic(t *testing.T) {
	text := sampleTexts[2]
	a := SelectBlanks(text, model.DifficultyIntermediate, rand.New(rand.NewPCG(11, 12)))
	b := SelectBlanks(text, model.DifficultyIntermediate, rand.New(rand.NewPCG(11, 12)))
	assert.Equal(t, a, b)
}

func TestSelectBlanks_UnknownDifficultyUsesDefault(t *testing.T) {
	text := sampleTexts[1]
	assert.Equal(t,
		SelectBlanks(text, model.DifficultyAdvanced, nil),
		SelectBlanks(text, model.Difficulty("expert"), nil),
	)
}

func TestSelectBlanks_Degenerate(t *testing.T) {
	assert.Empty(t, SelectBlanks("", model.DifficultyAdvanced, nil))
	assert.Empty(t, SelectBlanks("은 는 이 가", model.DifficultyAdvanced, nil))
	assert.Empty(t, SelectBlanks("2024 1 2 3", model.DifficultyAdvanced, nil))
}

func TestTargetBlankCount(t *testing.T) {
	assert.Equal(t, 2, TargetBlankCount(10, model.DifficultyBeginner))
	assert.Equal(t, 5, TargetBlankCount(10, model.DifficultyIntermediate))
	assert.Equal(t, 9, TargetBlankCount(10, model.DifficultyAdvanced))
	assert.Equal(t, 19, TargetBlankCount(20, model.DifficultyAdvanced))
	assert.Equal(t, 0, TargetBlankCount(0, model.DifficultyAdvanced))
}
