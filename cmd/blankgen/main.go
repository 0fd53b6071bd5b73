// Command blankgen generates fill-in-the-blank exercises offline.
//
// It reads Korean text from a file, a catalog category or stdin and prints
// the chosen blanks as JSON. With -quiz it runs the exercise as a drill in
// the terminal instead.
//
//	blankgen -difficulty beginner -file lesson.txt
//	blankgen -category ai_basics -quiz
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/stemsi/bincan-backend/internal/catalog"
	"github.com/stemsi/bincan-backend/internal/engine"
	"github.com/stemsi/bincan-backend/internal/logger"
	"github.com/stemsi/bincan-backend/internal/model"
)

type options struct {
	file       string
	category   string
	difficulty string
	seed       uint64
	quiz       bool
	indent     bool
	logLevel   string
}

// output is the JSON document printed in generate mode.
type output struct {
	Difficulty model.Difficulty  `json:"difficulty"`
	Category   model.Category    `json:"category,omitempty"`
	WordCount  int               `json:"wordCount"`
	Target     int               `json:"targetBlankCount"`
	Blanks     []model.BlankItem `json:"blanks"`
	Masked     string            `json:"masked"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "blankgen:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("blankgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.file, "file", "", "read text from this file")
	fs.StringVar(&opts.category, "category", "", "use the catalog text of this category")
	fs.StringVar(&opts.difficulty, "difficulty", string(model.DefaultDifficulty), "beginner, intermediate or advanced")
	fs.Uint64Var(&opts.seed, "seed", 0, "fixed random seed; 0 picks a fresh one")
	fs.BoolVar(&opts.quiz, "quiz", false, "run an interactive drill in the terminal")
	fs.BoolVar(&opts.indent, "indent", true, "indent JSON output")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.file != "" && opts.category != "" {
		return opts, errors.New("-file and -category are mutually exclusive")
	}
	if !model.Difficulty(opts.difficulty).Valid() {
		return opts, fmt.Errorf("unknown difficulty %q", opts.difficulty)
	}
	return opts, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	log := logger.Component(logger.New(stderr, opts.logLevel, "pretty"), "blankgen")

	text, cat, err := readText(opts, stdin)
	if err != nil {
		return err
	}

	var rng engine.Rand = engine.DefaultRand
	if opts.seed != 0 {
		rng = rand.New(rand.NewPCG(opts.seed, opts.seed))
	}

	difficulty := model.Difficulty(opts.difficulty)
	blanks := engine.SelectBlanks(text, difficulty, rng)
	wordCount := engine.WordCount(text)

	log.Debug().
		Int("words", wordCount).
		Int("blanks", len(blanks)).
		Str("difficulty", string(difficulty)).
		Msg("Blanks selected")

	if opts.quiz {
		return runQuiz(text, blanks, log)
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	if opts.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(output{
		Difficulty: difficulty,
		Category:   cat,
		WordCount:  wordCount,
		Target:     engine.TargetBlankCount(wordCount, difficulty),
		Blanks:     blanks,
		Masked:     engine.Render(text, blanks, placeholder),
	})
}

func readText(opts options, stdin io.Reader) (string, model.Category, error) {
	switch {
	case opts.category != "":
		cat, err := catalog.Default()
		if err != nil {
			return "", "", err
		}
		entry, err := cat.Get(model.Category(opts.category))
		if err != nil {
			return "", "", fmt.Errorf("category %q: %w", opts.category, err)
		}
		return entry.Content, entry.Category, nil
	case opts.file != "":
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", "", err
		}
		return string(data), "", nil
	default:
		if opts.quiz {
			return "", "", errors.New("-quiz needs -file or -category so stdin stays free for answers")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "", nil
	}
}

func placeholder(i int, b model.BlankItem) string {
	return fmt.Sprintf("(%d)%s", i+1, strings.Repeat("__", b.Length))
}
