package insights

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

// filterStop ends a filter value: a conjunction or clause punctuation.
var filterStop = regexp.MustCompile(`(?i)\s+(and|or)\b|[,.;]`)

// filterOperators follow the column name; word operators need a boundary after them.
var filterOperators = []struct {
	text string
	word bool
}{
	{" =", false},
	{" is", true},
	{":", false},
	{" equals", true},
}

// longestFirst orders columns by name length descending so "Country Code" is tried
// before "Country". Equal lengths keep the original order.
func longestFirst(columns []string) []string {
	sorted := append([]string(nil), columns...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return sorted
}

// ExtractFilter finds a "<column> = value" style clause in the question.
func ExtractFilter(question string, columns []string) (*models.Filter, bool) {
	lower := strings.ToLower(question)
	// Slice values out of the original text when lowercasing kept byte offsets.
	source := lower
	if len(lower) == len(question) {
		source = question
	}

	for _, col := range longestFirst(columns) {
		name := strings.ToLower(strings.TrimSpace(col))
		if name == "" {
			continue
		}
		for _, op := range filterOperators {
			pattern := name + op.text
			idx := indexAtWordStart(lower, pattern)
			if idx < 0 {
				continue
			}
			rest := idx + len(pattern)
			if op.word && rest < len(lower) {
				r, _ := utf8.DecodeRuneInString(lower[rest:])
				if unicode.IsLetter(r) || unicode.IsDigit(r) {
					continue
				}
			}
			if value := filterValue(source[rest:]); value != "" {
				return &models.Filter{Column: col, Value: value}, true
			}
		}
	}
	return nil, false
}

// indexAtWordStart finds pattern in s where it is not glued to a preceding word.
func indexAtWordStart(s, pattern string) int {
	offset := 0
	for {
		i := strings.Index(s[offset:], pattern)
		if i < 0 {
			return -1
		}
		at := offset + i
		if at == 0 {
			return at
		}
		r, _ := utf8.DecodeLastRuneInString(s[:at])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return at
		}
		offset = at + 1
	}
}

func filterValue(rest string) string {
	if loc := filterStop.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	v := strings.TrimSpace(rest)
	v = strings.TrimRight(v, "?!")
	v = strings.Trim(v, `"'`+"`“”‘’")
	return strings.TrimSpace(v)
}
