package engine

import (
	"cmp"
	"slices"
	"strings"

	"github.com/stemsi/bincan-backend/internal/model"
)

// Render rebuilds text with every blank span replaced by fill(i, blank),
// where i is the blank's index in blanks. Blanks whose span falls outside
// text or overlaps an earlier blank are left as plain text.
func Render(text string, blanks []model.BlankItem, fill func(i int, b model.BlankItem) string) string {
	runes := []rune(text)

	order := make([]int, len(blanks))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(blanks[a].Position, blanks[b].Position)
	})

	var sb strings.Builder
	sb.Grow(len(text))
	cursor := 0
	for _, i := range order {
		b := blanks[i]
		end := b.Position + b.Length
		if b.Position < cursor || end > len(runes) || b.Length <= 0 {
			continue
		}
		sb.WriteString(string(runes[cursor:b.Position]))
		sb.WriteString(fill(i, b))
		cursor = end
	}
	sb.WriteString(string(runes[cursor:]))
	return sb.String()
}
