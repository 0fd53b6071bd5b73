package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/bincan-backend/internal/model"
)

func runCmd(t *testing.T, stdin string, args ...string) (output, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, strings.NewReader(stdin), &stdout, &stderr)
	if err != nil {
		return output{}, err
	}
	var out output
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	return out, nil
}

func TestRun_Stdin(t *testing.T) {
	out, err := runCmd(t, "나는 학교에 간다", "-difficulty", "advanced", "-seed", "7")
	require.NoError(t, err)

	assert.Equal(t, model.DifficultyAdvanced, out.Difficulty)
	assert.Equal(t, 3, out.WordCount)
	assert.Equal(t, 2, out.Target)
	require.Len(t, out.Blanks, 2)
	assert.Equal(t, "(1)____ (2)______ 간다", out.Masked)
}

func TestRun_SeedIsReproducible(t *testing.T) {
	text := "컴퓨터는 데이터를 입력받아 처리하고 그 결과를 출력하는 장치이다. 알고리즘은 문제를 해결하는 절차이다."

	first, err := runCmd(t, text, "-difficulty", "intermediate", "-seed", "42")
	require.NoError(t, err)
	second, err := runCmd(t, text, "-difficulty", "intermediate", "-seed", "42")
	require.NoError(t, err)

	assert.Equal(t, first.Blanks, second.Blanks)
}

func TestRun_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lesson.txt")
	require.NoError(t, os.WriteFile(path, []byte("데이터를 정리한다"), 0o600))

	out, err := runCmd(t, "", "-file", path, "-seed", "1")
	require.NoError(t, err)
	assert.Equal(t, 2, out.WordCount)
	assert.Empty(t, out.Category)
}

func TestRun_Category(t *testing.T) {
	out, err := runCmd(t, "", "-category", "ai_basics", "-difficulty", "beginner", "-seed", "3")
	require.NoError(t, err)

	assert.Equal(t, model.CategoryAIBasics, out.Category)
	assert.Positive(t, out.WordCount)
	assert.LessOrEqual(t, len(out.Blanks), out.Target)
}

func TestRun_FlagErrors(t *testing.T) {
	_, err := runCmd(t, "", "-difficulty", "expert")
	assert.ErrorContains(t, err, "unknown difficulty")

	_, err = runCmd(t, "", "-file", "a.txt", "-category", "ai_basics")
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = runCmd(t, "", "-category", "physics")
	assert.ErrorContains(t, err, "physics")
}

func TestRun_QuizNeedsTerminal(t *testing.T) {
	_, err := runCmd(t, "나는 학교에 간다", "-quiz")
	assert.ErrorContains(t, err, "stdin stays free")

	orig := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	t.Cleanup(func() { stdinIsTerminal = orig })

	_, err = runCmd(t, "", "-quiz", "-category", "ai_basics")
	assert.ErrorContains(t, err, "interactive terminal")
}
