package insights

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

// mergedAnswer is the combination of per-file answers, ready to format.
type mergedAnswer struct {
	intent models.Intent
	status answerStatus
	plan   Plan

	value    *float64
	items    []models.AnswerItem
	columns  []string
	profile  *models.ProfileSummary
	strategy string

	// fileName is set when exactly one file contributed.
	fileName   string
	matched    int
	total      int
	suggestion string
	available  []string
}

// mergeAnswers combines per-file answers. Scalars add up, averages are weighted by the
// number of values behind them, ranked items are merged by value and re-ranked.
func mergeAnswers(cls Classification, answers []*fileAnswer) *mergedAnswer {
	m := &mergedAnswer{intent: cls.Intent, total: len(answers)}

	var contributing []*fileAnswer
	for _, a := range answers {
		if a.contributed() {
			contributing = append(contributing, a)
		}
	}
	m.matched = len(contributing)

	if len(contributing) == 0 {
		m.status = softStatus(answers)
		if len(answers) > 0 {
			first := answers[0]
			m.plan = first.plan
			m.fileName = first.file.Name
			m.available = availableColumns(answers)
			for _, a := range answers {
				if a.suggestion != "" {
					m.suggestion = a.suggestion
					break
				}
			}
		}
		return m
	}

	first := contributing[0]
	m.plan = first.plan
	m.status = statusAnswered
	if len(contributing) == 1 {
		m.fileName = first.file.Name
	}
	m.strategy = mergeStrategies(contributing)

	switch cls.Intent {
	case models.IntentColumns:
		m.columns = unionColumns(contributing)
	case models.IntentSummary, models.IntentTypes:
		m.profile = mergeProfiles(contributing)
	default:
		if first.plan.Grouped() || cls.Intent == models.IntentCompare {
			m.items = mergeItems(cls.Intent, first.plan, contributing)
		} else {
			v := mergeScalar(cls.Intent, contributing)
			m.value = &v
		}
	}
	return m
}

// softStatus picks the most specific failure across files.
func softStatus(answers []*fileAnswer) answerStatus {
	best := statusNoColumn
	for _, a := range answers {
		switch a.status {
		case statusCompareUnresolved, statusNeedsMeasure:
			return a.status
		case statusNoValues:
			best = statusNoValues
		}
	}
	return best
}

func mergeScalar(intent models.Intent, answers []*fileAnswer) float64 {
	switch intent {
	case models.IntentMin, models.IntentMax:
		v := answers[0].result.Value
		for _, a := range answers[1:] {
			if intent == models.IntentMin && a.result.Value < v || intent == models.IntentMax && a.result.Value > v {
				v = a.result.Value
			}
		}
		return v
	case models.IntentAvg:
		var sum decimal.Decimal
		var n int64
		for _, a := range answers {
			sum = sum.Add(a.result.Sum)
			n += a.result.Count
		}
		return average(sum, n)
	}
	var total decimal.Decimal
	for _, a := range answers {
		total = total.Add(a.result.Sum)
	}
	return total.InexactFloat64()
}

func mergeItems(intent models.Intent, plan Plan, answers []*fileAnswer) []models.AnswerItem {
	if items, ok := mergeGroups(intent, plan, answers); ok {
		return items
	}
	var keys []string
	merged := map[string]*models.AnswerItem{}
	// weighted sums for grouped averages
	avgSums := map[string]float64{}

	for _, a := range answers {
		for _, it := range a.result.Items {
			cur, ok := merged[it.Value]
			if !ok {
				cp := it
				if it.Compare != nil {
					c := *it.Compare
					cp.Compare = &c
				}
				merged[it.Value] = &cp
				keys = append(keys, it.Value)
				avgSums[it.Value] = it.Count * float64(it.Weight)
				continue
			}
			switch intent {
			case models.IntentMin:
				if it.Count < cur.Count {
					cur.Count = it.Count
				}
			case models.IntentMax:
				if it.Count > cur.Count {
					cur.Count = it.Count
				}
			case models.IntentAvg:
				avgSums[it.Value] += it.Count * float64(it.Weight)
			default:
				cur.Count += it.Count
			}
			cur.Weight += it.Weight
			if it.Compare != nil {
				c := *it.Compare
				if cur.Compare != nil {
					c += *cur.Compare
				}
				cur.Compare = &c
			}
		}
	}

	items := make([]models.AnswerItem, 0, len(keys))
	for _, k := range keys {
		it := *merged[k]
		if intent == models.IntentAvg && it.Weight > 0 {
			it.Count = avgSums[k] / float64(it.Weight)
		}
		items = append(items, it)
	}
	if intent == models.IntentCompare {
		return rankItems(items, false, plan.itemLimit(), compareMetric)
	}
	return rankItems(items, plan.ascending(), plan.itemLimit(), itemCount)
}

// mergeGroups folds the exact group accumulators of every file and re-ranks on them.
// It reports false when the intent has none or a file did not supply them.
func mergeGroups(intent models.Intent, plan Plan, answers []*fileAnswer) ([]models.AnswerItem, bool) {
	if !intent.IsNumeric() || intent == models.IntentCompare {
		return nil, false
	}
	var keys []string
	merged := map[string]*numericAcc{}
	for _, a := range answers {
		if a.result.Groups == nil {
			return nil, false
		}
		for _, it := range a.result.Items {
			g, ok := a.result.Groups[it.Value]
			if !ok {
				return nil, false
			}
			cur, seen := merged[it.Value]
			if !seen {
				cur = &numericAcc{}
				merged[it.Value] = cur
				keys = append(keys, it.Value)
			}
			cur.merge(g)
		}
	}
	return rankGroups(plan, keys, merged), true
}

func unionColumns(answers []*fileAnswer) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, a := range answers {
		cols := a.columns
		if cols == nil && a.profile != nil {
			cols = a.profile.Columns
		}
		for _, c := range cols {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// availableColumns is the union of every file's columns in file order.
func availableColumns(answers []*fileAnswer) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, a := range answers {
		for _, c := range a.available {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

func mergeProfiles(answers []*fileAnswer) *models.ProfileSummary {
	if len(answers) == 1 {
		return answers[0].profile.Summary()
	}
	out := &models.ProfileSummary{
		NumericColumns:     []string{},
		DateColumns:        []string{},
		CategoricalColumns: []string{},
	}
	seen := map[string]bool{}
	add := func(dst *[]string, cols []string) {
		for _, c := range cols {
			if !contains(*dst, c) {
				*dst = append(*dst, c)
			}
		}
	}
	for _, a := range answers {
		p := a.profile
		out.RowCount += p.RowCount
		for _, c := range p.Columns {
			seen[c] = true
		}
		add(&out.NumericColumns, p.NumericColumns)
		add(&out.DateColumns, p.DateColumns)
		add(&out.CategoricalColumns, p.CategoricalColumns)
	}
	out.ColumnCount = len(seen)
	return out
}

func mergeStrategies(answers []*fileAnswer) string {
	var names []string
	for _, a := range answers {
		if a.result == nil || a.result.Strategy == "" {
			continue
		}
		if !contains(names, a.result.Strategy) {
			names = append(names, a.result.Strategy)
		}
	}
	return strings.Join(names, ",")
}
