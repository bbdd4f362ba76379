package insights

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

// Strategy names reported in answers.
const (
	StrategyPushdown = "pushdown"
	StrategyInMemory = "in_memory"
)

// Plan is a fully resolved aggregation over one file.
type Plan struct {
	FileID uuid.UUID
	// Intent is one of rows, count, distinct, sum, avg, min, max, top, compare.
	Intent        models.Intent
	Column        string
	CompareColumn string
	GroupBy       string
	Filter        *models.Filter
	TopN          int
}

// Grouped reports whether the plan ranks groups rather than producing a scalar.
func (p Plan) Grouped() bool {
	return p.GroupBy != "" || p.Intent == models.IntentTop
}

// itemLimit is the number of ranked items a plan returns.
func (p Plan) itemLimit() int {
	n := p.TopN
	if n < 1 {
		n = defaultTopN
	}
	if p.Intent == models.IntentCompare && n < 2 {
		n = 2
	}
	return n
}

// ascending reports whether ranked groups are ordered smallest first.
func (p Plan) ascending() bool {
	return p.Intent == models.IntentMin
}

// Result is the output of a strategy.
type Result struct {
	// Value is the scalar answer; unset for ranked results.
	Value float64
	// Sum and Count carry the exact numeric total and the number of values behind a
	// scalar, so multi-file merges can add sums and weight averages.
	Sum   decimal.Decimal
	Count int64
	Items []models.AnswerItem
	// Groups holds the exact accumulator behind each grouped sum, avg, min or max item,
	// keyed by item value.
	Groups map[string]*numericAcc
	// Strategy is StrategyPushdown or StrategyInMemory.
	Strategy string
}

// Strategy executes plans. A nil result with a nil error means the plan produced nothing,
// e.g. a numeric aggregate over a column without numbers.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, plan Plan) (*Result, error)
}

// rankedItem pairs an item with the exact metric it is ranked on.
type rankedItem struct {
	models.AnswerItem
	exact decimal.Decimal
}

// rankItems orders items by metric (descending unless ascending), ties by value, and truncates.
func rankItems(items []models.AnswerItem, ascending bool, limit int, metric func(models.AnswerItem) float64) []models.AnswerItem {
	ranked := make([]rankedItem, len(items))
	for i, it := range items {
		ranked[i] = rankedItem{AnswerItem: it, exact: decimal.NewFromFloat(metric(it))}
	}
	return rankExact(ranked, ascending, limit)
}

// rankExact is rankItems over exact metrics.
func rankExact(items []rankedItem, ascending bool, limit int) []models.AnswerItem {
	sort.SliceStable(items, func(i, j int) bool {
		if c := items[i].exact.Cmp(items[j].exact); c != 0 {
			return (c < 0) == ascending
		}
		return items[i].Value < items[j].Value
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]models.AnswerItem, len(items))
	for i, it := range items {
		out[i] = it.AnswerItem
	}
	return out
}

func itemCount(it models.AnswerItem) float64 { return it.Count }

func compareMetric(it models.AnswerItem) float64 {
	if it.Compare != nil && *it.Compare > it.Count {
		return *it.Compare
	}
	return it.Count
}
