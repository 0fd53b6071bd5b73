// Package engine turns Korean text into fill-in-the-blank exercises and
// grades answers against them. Everything here is pure computation: no I/O,
// no shared state, and the only source of non-determinism is the Rand passed
// to SelectBlanks.
package engine

import (
	"iter"
	"slices"
	"strings"
	"unicode"
)

// Token is one whitespace-delimited word of the source text.
// Offset and Length are in Unicode code points.
type Token struct {
	Index  int
	Text   string
	Offset int
	Length int
	Line   int
}

// Tokenize yields the words of text in order. Offsets are taken from the
// actual rune position of each word, so runs of spaces, tabs, blank lines
// and leading or trailing whitespace never shift later tokens.
//
// The returned sequence can be ranged over any number of times.
func Tokenize(text string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		var (
			word  strings.Builder
			start int
			size  int
			pos   int
			line  int
			index int
		)

		emit := func() bool {
			if size == 0 {
				return true
			}
			tok := Token{Index: index, Text: word.String(), Offset: start, Length: size, Line: line}
			index++
			word.Reset()
			size = 0
			return yield(tok)
		}

		for _, r := range text {
			if unicode.IsSpace(r) {
				if !emit() {
					return
				}
				if r == '\n' {
					line++
				}
			} else {
				if size == 0 {
					start = pos
				}
				word.WriteRune(r)
				size++
			}
			pos++
		}
		emit()
	}
}

// Tokens collects Tokenize into a slice.
func Tokens(text string) []Token {
	return slices.Collect(Tokenize(text))
}

// WordCount returns the number of tokens in text.
func WordCount(text string) int {
	n := 0
	for range Tokenize(text) {
		n++
	}
	return n
}
