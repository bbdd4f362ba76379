package insights

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

var printer = message.NewPrinter(language.English)

// FormatNumber renders a number with thousands separators and at most two decimals.
func FormatNumber(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// where describes the scope of an answer: "in sales.csv" or "across 3 files".
func (m *mergedAnswer) where(multi bool) string {
	if multi && m.matched != 1 {
		return fmt.Sprintf("across %d files", m.matched)
	}
	if m.fileName == "" {
		return "in this file"
	}
	return "in " + m.fileName
}

func (m *mergedAnswer) filterClause() string {
	if f := m.plan.Filter; f != nil {
		return fmt.Sprintf(" where %s is %q", f.Column, f.Value)
	}
	return ""
}

// coverage notes partial answers over a project.
func (m *mergedAnswer) coverage(multi bool) string {
	if !multi || m.matched >= m.total {
		return ""
	}
	return fmt.Sprintf(" (based on %d of %d files; the others had no matching data)", m.matched, m.total)
}

func formatItems(items []models.AnswerItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		if it.Compare != nil {
			parts[i] = fmt.Sprintf("%s (%s vs %s)", it.Value, FormatNumber(it.Count), FormatNumber(*it.Compare))
		} else {
			parts[i] = fmt.Sprintf("%s (%s)", it.Value, FormatNumber(it.Count))
		}
	}
	return strings.Join(parts, ", ")
}

var metricNames = map[models.Intent]string{
	models.IntentSum:   "total",
	models.IntentAvg:   "average",
	models.IntentMin:   "minimum",
	models.IntentMax:   "maximum",
	models.IntentCount: "count",
	models.IntentRows:  "row count",
}

// formatAnswer turns a merged answer into the response payload.
func formatAnswer(m *mergedAnswer, multi bool) *models.AnswerResult {
	if m.status != statusAnswered {
		return formatSoft(m, multi)
	}

	res := &models.AnswerResult{
		Intent:        m.intent,
		Column:        m.plan.Column,
		CompareColumn: m.plan.CompareColumn,
		GroupBy:       m.plan.GroupBy,
		Items:         m.items,
		Value:         m.value,
		Strategy:      m.strategy,
	}
	if multi {
		res.MatchedFiles, res.TotalFiles = m.matched, m.total
	}
	if f := m.plan.Filter; f != nil {
		res.Filter = &models.FilterValue{Column: f.Column, Value: f.Value}
	}

	where := m.where(multi)
	var answer string
	switch {
	case m.intent == models.IntentColumns:
		res.Columns = m.columns
		res.Column, res.Items, res.Filter = "", nil, nil
		if multi && m.matched > 1 {
			answer = fmt.Sprintf("The %d files have %d distinct columns: %s.", m.matched, len(m.columns), strings.Join(m.columns, ", "))
		} else {
			answer = fmt.Sprintf("There are %d columns %s: %s.", len(m.columns), where, strings.Join(m.columns, ", "))
		}

	case m.intent == models.IntentSummary || m.intent == models.IntentTypes:
		res.Profile = m.profile
		res.Column, res.Filter = "", nil
		answer = formatProfile(m.intent, m.profile, where)

	case m.intent == models.IntentCompare:
		answer = fmt.Sprintf("%s vs %s by %s %s: %s.", m.plan.Column, m.plan.CompareColumn, m.plan.GroupBy, where, formatItems(m.items))

	case m.items != nil && m.intent == models.IntentTop:
		head := fmt.Sprintf("Top %d values of", len(m.items))
		if len(m.items) == 1 {
			head = "Top value of"
		}
		answer = fmt.Sprintf("%s %s %s%s: %s.", head, m.plan.Column, where, m.filterClause(), formatItems(m.items))

	case m.items != nil:
		subject := metricNames[m.intent]
		if m.plan.Column != "" {
			subject += " of " + m.plan.Column
		}
		answer = fmt.Sprintf("%s by %s %s%s: %s.", capitalize(subject), m.plan.GroupBy, where, m.filterClause(), formatItems(m.items))

	default:
		answer = formatScalar(m, where)
	}

	res.Answer = answer + m.coverage(multi)
	return res
}

func formatScalar(m *mergedAnswer, where string) string {
	v := FormatNumber(*m.value)
	switch m.intent {
	case models.IntentRows:
		return fmt.Sprintf("There are %s rows %s%s.", v, where, m.filterClause())
	case models.IntentCount:
		if m.plan.Column == "" {
			return fmt.Sprintf("There are %s rows %s%s.", v, where, m.filterClause())
		}
		if f := m.plan.Filter; f != nil && f.Column == m.plan.Column {
			return fmt.Sprintf("There are %s rows %s where %s is %q.", v, where, f.Column, f.Value)
		}
		return fmt.Sprintf("There are %s non-empty values in %s %s%s.", v, m.plan.Column, where, m.filterClause())
	case models.IntentDistinct:
		return fmt.Sprintf("%s has %s distinct values %s%s.", m.plan.Column, v, where, m.filterClause())
	}
	return fmt.Sprintf("The %s of %s %s%s is %s.", metricNames[m.intent], m.plan.Column, where, m.filterClause(), v)
}

func formatProfile(intent models.Intent, p *models.ProfileSummary, where string) string {
	if p == nil {
		return fmt.Sprintf("No profile is available %s.", where)
	}
	if intent == models.IntentTypes {
		return fmt.Sprintf("Column types %s: numeric: %s; date: %s; categorical: %s.",
			where, listOrNone(p.NumericColumns), listOrNone(p.DateColumns), listOrNone(p.CategoricalColumns))
	}
	return fmt.Sprintf("There are %s rows and %d columns %s: %d numeric, %d date and %d categorical.",
		FormatNumber(float64(p.RowCount)), p.ColumnCount, where,
		len(p.NumericColumns), len(p.DateColumns), len(p.CategoricalColumns))
}

func formatSoft(m *mergedAnswer, multi bool) *models.AnswerResult {
	res := &models.AnswerResult{Intent: models.IntentUnknown}
	if multi {
		res.MatchedFiles, res.TotalFiles = 0, m.total
	}
	where := m.where(false)
	if multi {
		where = fmt.Sprintf("in any of the %d files", m.total)
	}

	switch m.status {
	case statusCompareUnresolved:
		res.Intent = models.IntentCompare
		res.Answer = CompareApology
		return res
	case statusNeedsMeasure:
		res.Intent = m.intent
		res.GroupBy = m.plan.GroupBy
		res.Answer = fmt.Sprintf("Which numeric column should I use for the %s by %s? Try something like \"%s of <column> by %s\".",
			metricNames[m.intent], m.plan.GroupBy, metricNames[m.intent], m.plan.GroupBy)
		return res
	case statusNoValues:
		res.Column = m.plan.Column
		res.Answer = fmt.Sprintf("I couldn't find any usable values in %s %s.", m.plan.Column, where)
		return res
	}

	answer := fmt.Sprintf("I couldn't match your question to a column %s.", where)
	if m.suggestion != "" {
		answer += fmt.Sprintf(" Did you mean %q?", m.suggestion)
	}
	if len(m.available) > 0 {
		answer += " Available columns: " + strings.Join(m.available, ", ") + "."
	}
	res.Answer = answer
	return res
}

func listOrNone(cols []string) string {
	if len(cols) == 0 {
		return "none"
	}
	return strings.Join(cols, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
