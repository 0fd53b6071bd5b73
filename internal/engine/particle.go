package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// particles are the grammatical case and topic markers (조사) recognised by
// the filter. Order matters only for display; lookups use longest match.
var particles = []string{
	"은", "는", "이", "가", "을", "를", "에", "에서", "으로", "로",
	"와", "과", "의", "도", "만", "까지", "부터", "에게", "한테",
	"께", "께서", "에게서", "한테서", "로부터", "보다", "처럼", "같이",
}

var particleSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(particles))
	for _, p := range particles {
		m[p] = struct{}{}
	}
	return m
}()

// Particles returns a copy of the particle table.
func Particles() []string {
	return append([]string(nil), particles...)
}

// IsParticle reports whether word is exactly a standalone particle.
// Words that merely end in a particle (학생의, 학교에) are not particles.
func IsParticle(word string) bool {
	_, ok := particleSet[word]
	return ok
}

// TrailingParticle returns the longest particle that word ends with, leaving
// at least one rune of stem in front of it. It returns "" when none matches.
func TrailingParticle(word string) string {
	best := ""
	for _, p := range particles {
		if len(p) <= len(best) || len(p) >= len(word) {
			continue
		}
		if strings.HasSuffix(word, p) {
			best = p
		}
	}
	return best
}

const punctuation = ".,!?;:'\"`()[]{}<>-_/\\|@#$%^&*+=~…·、。，．！？：；「」『』“”‘’《》〈〉【】―—–"

func isPunct(r rune) bool {
	return strings.ContainsRune(punctuation, r)
}

// Clean strips trailing punctuation from a raw token. Leading punctuation is
// kept, so the clean word always starts at the token offset and a quoted or
// bracketed token fails Eligible.
func Clean(raw string) string {
	return strings.TrimRightFunc(raw, isPunct)
}

// Eligible reports whether a cleaned word may become a blank. It must be at
// least two runes long, must not be a bare particle, and may only contain
// Hangul and ASCII letters.
func Eligible(word string) bool {
	if utf8.RuneCountInString(word) < 2 {
		return false
	}
	if IsParticle(word) {
		return false
	}
	for _, r := range word {
		if !isGradableRune(r) {
			return false
		}
	}
	return true
}

func isGradableRune(r rune) bool {
	if r < utf8.RuneSelf {
		return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
	}
	return unicode.Is(unicode.Hangul, r)
}
