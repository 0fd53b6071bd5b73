package engine

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/stemsi/bincan-backend/internal/model"
)

const (
	FeedbackParticle = "조사 구분 주의"
	FeedbackLength   = "단어 길이를 확인해보세요"
	FeedbackRetry    = "다시 한번 확인해보세요"
)

type feedbackRule struct {
	name    string
	matches func(answer, gold string) bool
	message string
}

// feedbackRules are tried in order for wrong, non-empty answers; the first
// match wins. The last rule always matches.
var feedbackRules = []feedbackRule{
	{name: "particle", matches: particleConfusion, message: FeedbackParticle},
	{name: "length", matches: lengthMismatch, message: FeedbackLength},
	{name: "retry", matches: func(string, string) bool { return true }, message: FeedbackRetry},
}

// particleConfusion matches answers that keep the stem of the gold word but
// add, drop or swap its final syllable, e.g. 학교 or 학교에 for 학교를.
func particleConfusion(answer, gold string) bool {
	_, size := utf8.DecodeLastRuneInString(gold)
	stem := gold[:len(gold)-size]
	if stem == "" || !strings.Contains(answer, stem) {
		return false
	}
	diff := utf8.RuneCountInString(answer) - utf8.RuneCountInString(gold)
	return diff >= -1 && diff <= 1
}

func lengthMismatch(answer, gold string) bool {
	return utf8.RuneCountInString(answer) != utf8.RuneCountInString(gold)
}

// Feedback returns the hint for a wrong answer, or "" when the answer is
// empty or correct.
func Feedback(answer, gold string) string {
	if answer == "" || answer == gold {
		return ""
	}
	for _, rule := range feedbackRules {
		if rule.matches(answer, gold) {
			return rule.message
		}
	}
	return ""
}

// GradeOne grades a single blank. The answer is trimmed and compared exactly.
func GradeOne(blank model.BlankItem, answer string) model.ExerciseResult {
	answer = strings.TrimSpace(answer)
	return model.ExerciseResult{
		BlankID:       blank.ID,
		UserAnswer:    answer,
		CorrectAnswer: blank.Word,
		IsCorrect:     answer == blank.Word,
		Feedback:      Feedback(answer, blank.Word),
	}
}

// Grade returns one result per blank, in blank order. Blanks without an entry
// in answers are graded as empty.
func Grade(blanks []model.BlankItem, answers map[string]string) []model.ExerciseResult {
	results := make([]model.ExerciseResult, 0, len(blanks))
	for _, b := range blanks {
		results = append(results, GradeOne(b, answers[b.ID]))
	}
	return results
}

// FindBlank looks a blank up by id.
func FindBlank(blanks []model.BlankItem, id string) (model.BlankItem, bool) {
	for _, b := range blanks {
		if b.ID == id {
			return b, true
		}
	}
	return model.BlankItem{}, false
}

// Score aggregates results. Percentage is 0 when there are no results.
func Score(results []model.ExerciseResult) model.Score {
	s := model.Score{Total: len(results)}
	for _, r := range results {
		if r.IsCorrect {
			s.Correct++
		}
	}
	s.Incorrect = s.Total - s.Correct
	if s.Total > 0 {
		s.Percentage = int(math.Round(float64(s.Correct) / float64(s.Total) * 100))
	}
	return s
}
