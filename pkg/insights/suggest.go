package insights

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// SuggestionThreshold is the minimum Jaro-Winkler similarity for a "did you mean" hint.
const SuggestionThreshold = 0.85

// suggestColumn returns the column whose name is closest to a phrase in the question,
// compared over question windows with as many tokens as the column name.
func suggestColumn(question string, columns []string) string {
	qTokens := Tokens(question)
	best, bestScore := "", float32(0)
	for _, col := range columns {
		name := NormalizeText(col)
		width := len(strings.Fields(name))
		if width == 0 || width > len(qTokens) {
			continue
		}
		for i := 0; i+width <= len(qTokens); i++ {
			window := strings.Join(qTokens[i:i+width], " ")
			if len(window) < 3 || window == name {
				continue
			}
			score, err := edlib.StringsSimilarity(window, name, edlib.JaroWinkler)
			if err != nil {
				continue
			}
			if score > bestScore {
				best, bestScore = col, score
			}
		}
	}
	if bestScore < SuggestionThreshold {
		return ""
	}
	return best
}
