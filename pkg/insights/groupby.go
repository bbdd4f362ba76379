package insights

import (
	"regexp"
	"strings"
)

// DetectGroupBy finds "group by <col>", "by <col>" or "per <col>" in the question.
// Columns are tried longest first; excluded columns are skipped.
func DetectGroupBy(question string, columns []string, exclude ...string) (string, bool) {
	lower := strings.ToLower(question)
	for _, col := range longestFirst(without(columns, exclude...)) {
		name := strings.ToLower(strings.TrimSpace(col))
		if name == "" {
			continue
		}
		quoted := regexp.QuoteMeta(name)
		for _, prefix := range []string{`group by `, `by `, `per `} {
			re, err := regexp.Compile(`\b` + prefix + quoted + `\b`)
			if err != nil {
				continue
			}
			if re.MatchString(lower) {
				return col, true
			}
		}
	}
	return "", false
}
