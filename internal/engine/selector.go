package engine

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/stemsi/bincan-backend/internal/model"
)

// Rand is the random source used to roll blank acceptance.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRand draws from the process-wide math/rand/v2 source.
var DefaultRand Rand = globalRand{}

// functionalWords are verbs and copulas that beginners never get as blanks
// and intermediate learners get less often.
var functionalWords = []string{"있다", "없다", "되다", "하다", "이다", "아니다"}

func isFunctional(word string) bool {
	for _, f := range functionalWords {
		if strings.Contains(word, f) {
			return true
		}
	}
	return false
}

type policy struct {
	ratio  float64
	accept func(word string, rng Rand) bool
}

var policies = map[model.Difficulty]policy{
	model.DifficultyBeginner: {
		ratio: 0.20,
		accept: func(word string, rng Rand) bool {
			return !isFunctional(word) && rng.Float64() < 0.25
		},
	},
	model.DifficultyIntermediate: {
		ratio: 0.50,
		accept: func(word string, rng Rand) bool {
			if isFunctional(word) {
				return rng.Float64() < 0.30
			}
			return rng.Float64() < 0.60
		},
	},
	model.DifficultyAdvanced: {
		ratio:  0.95,
		accept: func(string, Rand) bool { return true },
	},
}

// Ratio returns the share of all words that may become blanks at d.
// Unknown levels fall back to the default difficulty.
func Ratio(d model.Difficulty) float64 {
	return policyFor(d).ratio
}

// TargetBlankCount is the upper bound on blanks for a text of wordCount words.
func TargetBlankCount(wordCount int, d model.Difficulty) int {
	return int(math.Floor(float64(wordCount) * Ratio(d)))
}

func policyFor(d model.Difficulty) policy {
	if p, ok := policies[d]; ok {
		return p
	}
	return policies[model.DefaultDifficulty]
}

// BlankID builds the stable id of the blank cut from the token at index.
func BlankID(index int) string {
	return "blank_" + strconv.Itoa(index)
}

// SelectBlanks walks the tokens of text in order and turns eligible ones into
// blanks until the target count for d is reached. Each eligible token is kept
// with the policy's acceptance probability, so fewer blanks than the target
// may come back but never more. A nil rng uses DefaultRand.
func SelectBlanks(text string, d model.Difficulty, rng Rand) []model.BlankItem {
	if rng == nil {
		rng = DefaultRand
	}
	p := policyFor(d)
	tokens := Tokens(text)
	target := int(math.Floor(float64(len(tokens)) * p.ratio))

	blanks := make([]model.BlankItem, 0, target)
	for _, tok := range tokens {
		if len(blanks) >= target {
			break
		}
		word := Clean(tok.Text)
		if !Eligible(word) || !p.accept(word, rng) {
			continue
		}
		blanks = append(blanks, model.BlankItem{
			ID:       BlankID(tok.Index),
			Position: tok.Offset,
			Word:     word,
			Length:   utf8.RuneCountInString(word),
		})
	}
	return blanks
}
