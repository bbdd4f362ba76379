package insights

import (
	"regexp"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

// phraseEnd terminates the noun phrase after "how many", "count" or "number of".
const phraseEnd = `(?:\s+(?:are|were|is|was|do|does|did|in|on|at|from|there|exist|exists|have|has|with|where)\b|\s*[?.!,;]|$)`

var countPhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bhow many\s+(.+?)` + phraseEnd),
	regexp.MustCompile(`(?i)\bnumber of\s+(.+?)` + phraseEnd),
	regexp.MustCompile(`(?i)\bcount(?:\s+of)?\s+(.+?)` + phraseEnd),
}

// genericNouns never name a value; their plurals are caught through inflection.
var genericNouns = map[string]bool{
	"row":    true,
	"record": true,
	"column": true,
	"field":  true,
	"header": true,
	"entry":  true,
	"line":   true,
	"value":  true,
	"item":   true,
}

// ExtractCountPhrase pulls the counted noun phrase out of a count question.
func ExtractCountPhrase(question string) (string, bool) {
	for _, re := range countPhrasePatterns {
		m := re.FindStringSubmatch(question)
		if m == nil {
			continue
		}
		phrase := strings.Trim(strings.TrimSpace(m[1]), `"'`)
		phrase = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(phrase, "the "), "The "))
		if phrase == "" {
			continue
		}
		words := strings.Fields(strings.ToLower(phrase))
		last := words[len(words)-1]
		if genericNouns[last] || genericNouns[inflection.Singular(last)] {
			return "", false
		}
		return phrase, true
	}
	return "", false
}

// InferValueFilter finds the column whose cells most often equal the counted phrase
// (case-insensitive) and turns it into a filter. The singular form is tried when the
// phrase as written matches nothing.
func InferValueFilter(question string, columns []string, sample []models.Row, maxColumns int) (*models.Filter, bool) {
	phrase, ok := ExtractCountPhrase(question)
	if !ok {
		return nil, false
	}
	if maxColumns > 0 && len(columns) > maxColumns {
		columns = columns[:maxColumns]
	}

	candidates := []string{phrase}
	if singular := inflection.Singular(phrase); !strings.EqualFold(singular, phrase) {
		candidates = append(candidates, singular)
	}

	for _, value := range candidates {
		if col, hits := bestValueColumn(value, columns, sample); hits > 0 {
			return &models.Filter{Column: col, Value: value}, true
		}
	}
	return nil, false
}

func bestValueColumn(value string, columns []string, sample []models.Row) (string, int) {
	best, bestHits := "", 0
	for _, col := range columns {
		hits := 0
		for _, row := range sample {
			if v, ok := cellValue(row[col]); ok && strings.EqualFold(v, value) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = col, hits
		}
	}
	return best, bestHits
}
