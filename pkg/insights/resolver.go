package insights

import (
	"sort"
	"strings"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

const (
	substringScore = 4.0
	allTokensScore = 2.0
	tokenScore     = 0.7

	// MinColumnScore is the lowest score a column match is accepted with.
	MinColumnScore = 0.7
)

// ScoreColumn scores how strongly a question refers to a column.
func ScoreColumn(question, column string) float64 {
	return scoreNormalized(NormalizeText(question), tokenSet(question), column)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range Tokens(s) {
		set[t] = true
	}
	return set
}

func scoreNormalized(normQuestion string, questionTokens map[string]bool, column string) float64 {
	normColumn := NormalizeText(column)
	if normColumn == "" {
		return 0
	}

	score := 0.0
	if strings.Contains(normQuestion, normColumn) {
		score += substringScore
	}

	colTokens := strings.Fields(normColumn)
	all := true
	for _, t := range colTokens {
		if questionTokens[t] {
			score += tokenScore
		} else {
			all = false
		}
	}
	if all {
		score += allTokensScore
	}
	return score
}

// RankColumns scores every column and orders them by score descending.
// Equal scores keep the original column order.
func RankColumns(question string, columns []string) []models.ColumnMatch {
	normQuestion := NormalizeText(question)
	qTokens := tokenSet(question)

	ranked := make([]models.ColumnMatch, len(columns))
	for i, col := range columns {
		ranked[i] = models.ColumnMatch{Column: col, Score: scoreNormalized(normQuestion, qTokens, col)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// ResolveColumn returns the best scoring column, if its score is at least MinColumnScore.
// Ties go to the column that comes first in the original order.
func ResolveColumn(question string, columns []string) (models.ColumnMatch, bool) {
	ranked := RankColumns(question, columns)
	if len(ranked) == 0 || ranked[0].Score < MinColumnScore {
		return models.ColumnMatch{}, false
	}
	return ranked[0], true
}

// without returns columns minus the excluded names.
func without(columns []string, exclude ...string) []string {
	if len(exclude) == 0 {
		return columns
	}
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		if e != "" {
			skip[e] = true
		}
	}
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if !skip[c] {
			out = append(out, c)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
