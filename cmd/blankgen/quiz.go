package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/bincan-backend/internal/engine"
	"github.com/stemsi/bincan-backend/internal/model"
	"golang.org/x/term"
)

const (
	hintCommand  = "?"
	defaultWidth = 60
)

// stdinIsTerminal is swapped out by tests.
var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// runQuiz asks for every blank in order on the controlling terminal. Typing
// "?" shows a hint for the current blank and Ctrl-D ends the drill early.
func runQuiz(text string, blanks []model.BlankItem, log zerolog.Logger) error {
	if !stdinIsTerminal() {
		return errors.New("-quiz requires an interactive terminal")
	}
	if len(blanks) == 0 {
		return errors.New("the text has no blankable words")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer func() {
		if err := term.Restore(fd, oldState); err != nil {
			log.Warn().Err(err).Msg("Restoring terminal failed")
		}
	}()

	width := defaultWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	t := term.NewTerminal(screen, "")

	q := &quiz{t: t, rule: strings.Repeat("─", min(width, 80))}
	results, err := q.ask(text, blanks)
	if err != nil {
		return err
	}

	q.summary(results)
	log.Debug().Int("answered", len(results)).Msg("Quiz finished")
	return nil
}

type quiz struct {
	t    *term.Terminal
	rule string
}

func (q *quiz) println(format string, args ...any) {
	fmt.Fprintf(q.t, format+"\n", args...)
}

func (q *quiz) ask(text string, blanks []model.BlankItem) ([]model.ExerciseResult, error) {
	q.println("%s", q.rule)
	q.println("%s", engine.Render(text, blanks, placeholder))
	q.println("%s", q.rule)
	q.println("빈칸에 들어갈 단어를 입력하세요. 힌트는 %q, 종료는 Ctrl-D.", hintCommand)

	results := make([]model.ExerciseResult, 0, len(blanks))
	for i, b := range blanks {
		q.t.SetPrompt(fmt.Sprintf("(%d) > ", i+1))

		var answer string
		for {
			line, err := q.t.ReadLine()
			if errors.Is(err, io.EOF) {
				return results, nil
			}
			if err != nil {
				return results, fmt.Errorf("read answer: %w", err)
			}
			if strings.TrimSpace(line) == hintCommand {
				q.println("  %s", engine.Hint(b).Text)
				continue
			}
			answer = line
			break
		}

		res := engine.GradeOne(b, answer)
		results = append(results, res)
		switch {
		case res.IsCorrect:
			q.println("  정답입니다!")
		case res.Feedback != "":
			q.println("  오답: 정답은 %q (%s)", res.CorrectAnswer, res.Feedback)
		default:
			q.println("  오답: 정답은 %q", res.CorrectAnswer)
		}
	}
	return results, nil
}

func (q *quiz) summary(results []model.ExerciseResult) {
	score := engine.Score(results)
	q.println("%s", q.rule)
	q.println("점수: %d/%d (%d%%)", score.Correct, score.Total, score.Percentage)
}
