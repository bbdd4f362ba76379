package insights

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

// intentRule pairs a pattern with the intent it selects.
type intentRule struct {
	intent  models.Intent
	pattern *regexp.Regexp
}

// intentRules are evaluated in order and the first match wins. The order is the
// tie-break policy: "top 3 by average revenue" is a top question, not an average.
var intentRules = []intentRule{
	{models.IntentSummary, regexp.MustCompile(`\b(summary|summari[sz]e|overview|describe)\b`)},
	{models.IntentTypes, regexp.MustCompile(`\b(data ?types?|column types?|field types?|schema)\b|\bwhat types\b`)},
	{models.IntentColumns, regexp.MustCompile(`\b(columns|fields|headers)\b`)},
	{models.IntentRows, regexp.MustCompile(`\b(how many|count|number of|total)\b.*\b(rows|records|entries|lines)\b`)},
	{models.IntentTop, regexp.MustCompile(`\btop\b|\bmost (common|frequent|popular)\b`)},
	{models.IntentCompare, regexp.MustCompile(`\b(compare|comparison|vs|versus)\b`)},
	{models.IntentDistinct, regexp.MustCompile(`\b(distinct|unique)\b`)},
	{models.IntentAvg, regexp.MustCompile(`\b(average|avg|mean)\b`)},
	{models.IntentSum, regexp.MustCompile(`\b(sum|total)\b`)},
	{models.IntentMax, regexp.MustCompile(`\b(max|maximum|highest|largest|biggest)\b`)},
	{models.IntentMin, regexp.MustCompile(`\b(min|minimum|lowest|smallest)\b`)},
	{models.IntentCount, regexp.MustCompile(`\b(how many|count|number of)\b`)},
}

var topNPattern = regexp.MustCompile(`\btop[\s-]*(\d+)\b`)

// Classification is the classifier output.
type Classification struct {
	Intent models.Intent
	TopN   int
}

// RuleOrder returns the intents in rule evaluation order.
func RuleOrder() []models.Intent {
	order := make([]models.Intent, len(intentRules))
	for i, r := range intentRules {
		order[i] = r.intent
	}
	return order
}

// ClassifyIntent maps question text to an intent. Defaults to count.
func ClassifyIntent(question string) models.Intent {
	q := strings.ToLower(question)
	for _, rule := range intentRules {
		if rule.pattern.MatchString(q) {
			return rule.intent
		}
	}
	return models.IntentCount
}

// ParseTopN extracts "top N" clamped to [1,max], or returns def.
func ParseTopN(question string, def, max int) int {
	m := topNPattern.FindStringSubmatch(strings.ToLower(question))
	if m == nil {
		return def
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		// only digits matched, so the value overflowed
		return max
	}
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}

// Classify runs the classifier and the topN parser with the configured bounds.
func Classify(question string, cfg Config) Classification {
	return Classification{
		Intent: ClassifyIntent(question),
		TopN:   ParseTopN(question, cfg.DefaultTopN, cfg.MaxTopN),
	}
}
