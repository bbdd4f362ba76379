package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/retry"
)

// RowSource provides batched access to a file's rows in a stable order.
type RowSource interface {
	ListRows(ctx context.Context, fileID uuid.UUID, limit, offset int) ([]models.Row, error)
}

// InMemoryExecutor aggregates over rows materialized from a RowSource, capped at the
// configured row limit.
type InMemoryExecutor struct {
	rows   RowSource
	cfg    Config
	retry  *retry.Config
	logger *zap.Logger
}

var _ Strategy = (*InMemoryExecutor)(nil)

// NewInMemoryExecutor creates the fallback strategy.
func NewInMemoryExecutor(rows RowSource, cfg Config, logger *zap.Logger) *InMemoryExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("in-memory")
	return &InMemoryExecutor{
		rows:   rows,
		cfg:    cfg.Normalize(),
		retry:  retry.DefaultConfig().Logged(logger, "list_rows"),
		logger: logger,
	}
}

func (e *InMemoryExecutor) Name() string { return StrategyInMemory }

// Execute loads up to RowLimit rows and aggregates them.
func (e *InMemoryExecutor) Execute(ctx context.Context, plan Plan) (*Result, error) {
	rows, err := LoadRows(ctx, e.rows, plan.FileID, e.cfg.RowLimit, e.cfg.FetchBatchSize, e.retry)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Aggregating rows in memory",
		zap.String("file_id", plan.FileID.String()),
		zap.String("intent", string(plan.Intent)),
		zap.Int("rows", len(rows)))
	return Aggregate(plan, rows), nil
}

// LoadRows reads up to limit rows in batches, retrying transient failures per batch.
func LoadRows(ctx context.Context, src RowSource, fileID uuid.UUID, limit, batchSize int, rc *retry.Config) ([]models.Row, error) {
	if batchSize <= 0 || batchSize > limit {
		batchSize = limit
	}
	var rows []models.Row
	for len(rows) < limit {
		offset := len(rows)
		size := min(batchSize, limit-offset)
		batch, err := retry.DoWithResult(ctx, rc, func() ([]models.Row, error) {
			return src.ListRows(ctx, fileID, size, offset)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list rows for file %s at offset %d: %w", fileID, offset, err)
		}
		rows = append(rows, batch...)
		if len(batch) < size {
			break
		}
	}
	return rows, nil
}

// Aggregate evaluates a plan over rows. It returns nil when the plan produces nothing:
// no numeric values for a numeric aggregate, or no groups for a ranked answer.
func Aggregate(plan Plan, rows []models.Row) *Result {
	matched := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		if matchesFilter(row, plan.Filter) {
			matched = append(matched, row)
		}
	}

	switch {
	case plan.Intent == models.IntentCompare:
		return aggregateCompare(plan, matched)
	case plan.Grouped():
		return aggregateGroups(plan, matched)
	}

	switch plan.Intent {
	case models.IntentRows:
		return countResult(int64(len(matched)))
	case models.IntentCount:
		if plan.Column == "" {
			return countResult(int64(len(matched)))
		}
		var n int64
		for _, row := range matched {
			if _, ok := cellValue(row[plan.Column]); ok {
				n++
			}
		}
		return countResult(n)
	case models.IntentDistinct:
		seen := make(map[string]struct{})
		for _, row := range matched {
			if v, ok := cellValue(row[plan.Column]); ok {
				seen[strings.ToLower(v)] = struct{}{}
			}
		}
		return countResult(int64(len(seen)))
	case models.IntentSum, models.IntentAvg, models.IntentMin, models.IntentMax:
		var acc numericAcc
		for _, row := range matched {
			if d, ok := ParseNumber(row[plan.Column]); ok {
				acc.add(d)
			}
		}
		if acc.n == 0 {
			return nil
		}
		return &Result{Value: acc.metric(plan.Intent), Sum: acc.sum, Count: acc.n}
	}
	return nil
}

func matchesFilter(row models.Row, f *models.Filter) bool {
	if f == nil {
		return true
	}
	v, ok := cellValue(row[f.Column])
	if !ok {
		return false
	}
	return strings.ToLower(v) == strings.ToLower(strings.Trim(f.Value, cellTrimSet))
}

func countResult(n int64) *Result {
	return &Result{Value: float64(n), Sum: decimal.NewFromInt(n), Count: n}
}

// numericAcc accumulates exact values for sum, avg, min and max.
type numericAcc struct {
	sum      decimal.Decimal
	min, max decimal.Decimal
	n        int64
}

func (a *numericAcc) add(d decimal.Decimal) {
	if a.n == 0 {
		a.min, a.max = d, d
	} else {
		if d.LessThan(a.min) {
			a.min = d
		}
		if d.GreaterThan(a.max) {
			a.max = d
		}
	}
	a.sum = a.sum.Add(d)
	a.n++
}

// merge folds o into a.
func (a *numericAcc) merge(o *numericAcc) {
	if o.n == 0 {
		return
	}
	if a.n == 0 || o.min.LessThan(a.min) {
		a.min = o.min
	}
	if a.n == 0 || o.max.GreaterThan(a.max) {
		a.max = o.max
	}
	a.sum = a.sum.Add(o.sum)
	a.n += o.n
}

func (a *numericAcc) exact(intent models.Intent) decimal.Decimal {
	switch intent {
	case models.IntentAvg:
		if a.n == 0 {
			return decimal.Zero
		}
		return a.sum.Div(decimal.NewFromInt(a.n))
	case models.IntentMin:
		return a.min
	case models.IntentMax:
		return a.max
	}
	return a.sum
}

func (a *numericAcc) metric(intent models.Intent) float64 {
	return a.exact(intent).InexactFloat64()
}

func average(sum decimal.Decimal, n int64) float64 {
	if n == 0 {
		return 0
	}
	return sum.Div(decimal.NewFromInt(n)).InexactFloat64()
}

// groupAcc keeps groups in first-seen order.
type groupAcc struct {
	keys   []string
	groups map[string]*numericAcc
	counts map[string]int64
}

func newGroupAcc() *groupAcc {
	return &groupAcc{groups: map[string]*numericAcc{}, counts: map[string]int64{}}
}

func (g *groupAcc) touch(key string) {
	if _, ok := g.counts[key]; !ok {
		g.keys = append(g.keys, key)
		g.counts[key] = 0
		g.groups[key] = &numericAcc{}
	}
}

func aggregateGroups(plan Plan, rows []models.Row) *Result {
	groupCol := plan.GroupBy
	if plan.Intent == models.IntentTop {
		groupCol = plan.Column
	}
	acc := newGroupAcc()
	for _, row := range rows {
		key, ok := cellValue(row[groupCol])
		if !ok {
			continue
		}
		switch plan.Intent {
		case models.IntentTop:
			acc.touch(key)
			acc.counts[key]++
		case models.IntentCount, models.IntentRows:
			if plan.Column != "" {
				if _, ok := cellValue(row[plan.Column]); !ok {
					continue
				}
			}
			acc.touch(key)
			acc.counts[key]++
		default:
			d, ok := ParseNumber(row[plan.Column])
			if !ok {
				continue
			}
			acc.touch(key)
			acc.groups[key].add(d)
		}
	}
	if len(acc.keys) == 0 {
		return nil
	}

	if plan.Intent.IsNumeric() {
		return &Result{Items: rankGroups(plan, acc.keys, acc.groups), Groups: acc.groups}
	}
	items := make([]models.AnswerItem, 0, len(acc.keys))
	for _, key := range acc.keys {
		items = append(items, models.AnswerItem{Value: key, Count: float64(acc.counts[key]), Weight: acc.counts[key]})
	}
	return &Result{Items: rankItems(items, plan.ascending(), plan.itemLimit(), itemCount)}
}

// rankGroups ranks grouped numeric items on their exact metric.
func rankGroups(plan Plan, keys []string, groups map[string]*numericAcc) []models.AnswerItem {
	ranked := make([]rankedItem, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		ranked = append(ranked, rankedItem{
			AnswerItem: models.AnswerItem{Value: key, Count: g.metric(plan.Intent), Weight: g.n},
			exact:      g.exact(plan.Intent),
		})
	}
	return rankExact(ranked, plan.ascending(), plan.itemLimit())
}

func aggregateCompare(plan Plan, rows []models.Row) *Result {
	type sides struct{ left, right decimal.Decimal }
	var keys []string
	groups := map[string]*sides{}
	for _, row := range rows {
		key, ok := cellValue(row[plan.GroupBy])
		if !ok {
			continue
		}
		l, lok := ParseNumber(row[plan.Column])
		r, rok := ParseNumber(row[plan.CompareColumn])
		if !lok && !rok {
			continue
		}
		s, seen := groups[key]
		if !seen {
			s = &sides{}
			groups[key] = s
			keys = append(keys, key)
		}
		if lok {
			s.left = s.left.Add(l)
		}
		if rok {
			s.right = s.right.Add(r)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	items := make([]models.AnswerItem, 0, len(keys))
	for _, key := range keys {
		right := groups[key].right.InexactFloat64()
		items = append(items, models.AnswerItem{
			Value:   key,
			Count:   groups[key].left.InexactFloat64(),
			Compare: &right,
		})
	}
	return &Result{Items: rankItems(items, false, plan.itemLimit(), compareMetric)}
}
