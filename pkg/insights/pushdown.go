package insights

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/apperrors"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/audit"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
	sqlguard "github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/sql"
)

// SQLRunner runs a read-only query against the row store. Every selected column is
// returned as text; a nil entry is SQL NULL.
type SQLRunner interface {
	QueryText(ctx context.Context, query string, args ...any) ([][]*string, error)
}

// PushdownExecutor aggregates inside Postgres over the file_rows JSONB store.
type PushdownExecutor struct {
	runner   SQLRunner
	dataPath []string
	auditor  *audit.SecurityAuditor
	logger   *zap.Logger
}

var _ Strategy = (*PushdownExecutor)(nil)

// NewPushdownExecutor creates the push-down strategy. dataPath is the JSON path prefix
// under which rows keep their cells; empty means cells are top-level keys.
func NewPushdownExecutor(runner SQLRunner, dataPath []string, logger *zap.Logger) *PushdownExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PushdownExecutor{
		runner:   runner,
		dataPath: append([]string(nil), dataPath...),
		auditor:  audit.NewSecurityAuditor(logger),
		logger:   logger.Named("pushdown"),
	}
}

func (e *PushdownExecutor) Name() string { return StrategyPushdown }

// Execute builds the aggregate query for the plan and runs it.
func (e *PushdownExecutor) Execute(ctx context.Context, plan Plan) (*Result, error) {
	if e.runner == nil {
		return nil, apperrors.ErrPushdownUnavailable
	}
	if plan.Filter != nil {
		if check := sqlguard.CheckLiteral(plan.Filter.Column, plan.Filter.Value); check != nil {
			e.auditor.LogUnsafeLiteral(ctx, plan.FileID, audit.UnsafeLiteralDetails{
				Column:      plan.Filter.Column,
				Value:       plan.Filter.Value,
				Fingerprint: check.Fingerprint,
				Intent:      string(plan.Intent),
			})
			return nil, fmt.Errorf("%w: filter on %q (fingerprint %s)", apperrors.ErrUnsafeLiteral, check.Name, check.Fingerprint)
		}
	}

	q, err := BuildPushdownQuery(plan, e.dataPath)
	if err != nil {
		return nil, err
	}
	rows, err := e.runner.QueryText(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run push-down %s query: %w", plan.Intent, err)
	}
	return q.decode(rows)
}

// PushdownQuery is a parameterized aggregate query plus the decoder for its rows.
type PushdownQuery struct {
	SQL  string
	Args []any

	plan  Plan
	shape queryShape
}

type queryShape int

const (
	shapeCount queryShape = iota
	shapeNumeric
	shapeRanked
	shapeGroupedNumeric
	shapeCompare
)

// blankList renders blankLike for SQL IN lists.
const blankList = `'', '-', 'null', 'nan', 'n/a'`

// queryBuilder collects positional arguments.
type queryBuilder struct {
	args     []any
	dataPath []string
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// cell reads a column out of the row document, trimmed, with blank-like values as NULL.
func (b *queryBuilder) cell(column string) (string, error) {
	path := append(append([]string(nil), b.dataPath...), column)
	for _, seg := range path {
		if strings.TrimSpace(seg) == "" {
			return "", fmt.Errorf("%w: %q", apperrors.ErrMalformedPath, strings.Join(path, "."))
		}
	}
	p := b.arg(path)
	trimmed := fmt.Sprintf(`btrim(data #>> %s::text[], E' \t\r\n')`, p)
	return fmt.Sprintf(`CASE WHEN lower(%s) IN (%s) THEN NULL ELSE %s END`, trimmed, blankList, trimmed), nil
}

// numeric converts a cleaned cell to numeric when it is a numeric token, else NULL.
func numeric(cell string) string {
	stripped := fmt.Sprintf(`replace(%s, ',', '')`, cell)
	return fmt.Sprintf(`CASE WHEN %s ~ '%s' THEN %s::numeric END`, stripped, numericTokenSQL, stripped)
}

// BuildPushdownQuery renders the aggregate query for a plan.
func BuildPushdownQuery(plan Plan, dataPath []string) (*PushdownQuery, error) {
	b := &queryBuilder{dataPath: dataPath}
	fileArg := b.arg(plan.FileID)

	var selects []string
	addCell := func(alias, column string) error {
		expr, err := b.cell(column)
		if err != nil {
			return err
		}
		selects = append(selects, expr+" AS "+alias)
		return nil
	}

	needsValue := plan.Column != "" && plan.Intent != models.IntentRows
	if needsValue {
		if err := addCell("val", plan.Column); err != nil {
			return nil, err
		}
	}
	if plan.Intent == models.IntentCompare {
		if err := addCell("cmp", plan.CompareColumn); err != nil {
			return nil, err
		}
	}
	if plan.GroupBy != "" && plan.Intent != models.IntentTop {
		if err := addCell("grp", plan.GroupBy); err != nil {
			return nil, err
		}
	}
	if plan.Filter != nil {
		if err := addCell("flt", plan.Filter.Column); err != nil {
			return nil, err
		}
	}
	if len(selects) == 0 {
		selects = append(selects, "1 AS one")
	}

	var where []string
	if plan.Filter != nil {
		where = append(where, fmt.Sprintf("lower(flt) = lower(%s)", b.arg(strings.Trim(plan.Filter.Value, cellTrimSet))))
	}

	cte := fmt.Sprintf("WITH cells AS (\n  SELECT %s\n  FROM file_rows\n  WHERE file_id = %s\n)\n",
		strings.Join(selects, ",\n         "), fileArg)

	q := &PushdownQuery{plan: plan}
	var body string
	switch {
	case plan.Intent == models.IntentCompare:
		where = append(where, "grp IS NOT NULL")
		limit := b.arg(plan.itemLimit())
		body = fmt.Sprintf(`SELECT grp, COALESCE(SUM(num), 0)::text, COALESCE(SUM(cnum), 0)::text
FROM (SELECT grp, %s AS num, %s AS cnum FROM cells%s) t
WHERE num IS NOT NULL OR cnum IS NOT NULL
GROUP BY grp
ORDER BY GREATEST(COALESCE(SUM(num), 0), COALESCE(SUM(cnum), 0)) DESC, grp COLLATE "C"
LIMIT %s`, numeric("val"), numeric("cmp"), whereClause(where), limit)
		q.shape = shapeCompare

	case plan.Intent == models.IntentTop:
		where = append(where, "val IS NOT NULL")
		limit := b.arg(plan.itemLimit())
		body = fmt.Sprintf(`SELECT val, COUNT(*)::text, COUNT(*)::text
FROM cells%s
GROUP BY val
ORDER BY COUNT(*) DESC, val COLLATE "C"
LIMIT %s`, whereClause(where), limit)
		q.shape = shapeRanked

	case plan.GroupBy != "" && (plan.Intent == models.IntentCount || plan.Intent == models.IntentRows):
		where = append(where, "grp IS NOT NULL")
		counted := "*"
		if needsValue {
			where = append(where, "val IS NOT NULL")
			counted = "val"
		}
		limit := b.arg(plan.itemLimit())
		body = fmt.Sprintf(`SELECT grp, COUNT(%[1]s)::text, COUNT(%[1]s)::text
FROM cells%[2]s
GROUP BY grp
ORDER BY COUNT(%[1]s) DESC, grp COLLATE "C"
LIMIT %[3]s`, counted, whereClause(where), limit)
		q.shape = shapeRanked

	case plan.GroupBy != "":
		where = append(where, "grp IS NOT NULL")
		limit := b.arg(plan.itemLimit())
		direction := "DESC"
		if plan.ascending() {
			direction = "ASC"
		}
		body = fmt.Sprintf(`SELECT grp, SUM(num)::text, COUNT(num)::text, MIN(num)::text, MAX(num)::text
FROM (SELECT grp, %s AS num FROM cells%s) t
WHERE num IS NOT NULL
GROUP BY grp
ORDER BY %s %s, grp COLLATE "C"
LIMIT %s`, numeric("val"), whereClause(where), groupMetricSQL(plan.Intent), direction, limit)
		q.shape = shapeGroupedNumeric

	case plan.Intent.IsNumeric():
		body = fmt.Sprintf(`SELECT SUM(num)::text, COUNT(num)::text, MIN(num)::text, MAX(num)::text
FROM (SELECT %s AS num FROM cells%s) t`, numeric("val"), whereClause(where))
		q.shape = shapeNumeric

	default:
		counted := "COUNT(*)"
		switch {
		case plan.Intent == models.IntentDistinct:
			counted = "COUNT(DISTINCT lower(val))"
		case needsValue:
			counted = "COUNT(val)"
		}
		body = fmt.Sprintf("SELECT %s::text\nFROM cells%s", counted, whereClause(where))
		q.shape = shapeCount
	}

	q.SQL = cte + body
	q.Args = b.args
	return q, nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func groupMetricSQL(intent models.Intent) string {
	switch intent {
	case models.IntentAvg:
		return "SUM(num) / COUNT(num)"
	case models.IntentMin:
		return "MIN(num)"
	case models.IntentMax:
		return "MAX(num)"
	}
	return "SUM(num)"
}

func (q *PushdownQuery) decode(rows [][]*string) (*Result, error) {
	switch q.shape {
	case shapeCount:
		if len(rows) == 0 || len(rows[0]) < 1 {
			return countResult(0), nil
		}
		n, err := parseInt(rows[0][0])
		if err != nil {
			return nil, err
		}
		return countResult(n), nil

	case shapeNumeric:
		if len(rows) == 0 || len(rows[0]) < 4 {
			return nil, nil
		}
		acc, err := decodeAcc(rows[0])
		if err != nil || acc == nil {
			return nil, err
		}
		return &Result{Value: acc.metric(q.plan.Intent), Sum: acc.sum, Count: acc.n}, nil
	}

	if len(rows) == 0 {
		return nil, nil
	}
	items := make([]models.AnswerItem, 0, len(rows))
	var groups map[string]*numericAcc
	for _, row := range rows {
		if len(row) < 3 || row[0] == nil {
			return nil, fmt.Errorf("unexpected push-down row shape for %s", q.plan.Intent)
		}
		item := models.AnswerItem{Value: *row[0]}
		switch q.shape {
		case shapeRanked:
			n, err := parseInt(row[1])
			if err != nil {
				return nil, err
			}
			item.Count, item.Weight = float64(n), n
		case shapeGroupedNumeric:
			acc, err := decodeAcc(row[1:])
			if err != nil {
				return nil, err
			}
			if acc == nil {
				continue
			}
			item.Count, item.Weight = acc.metric(q.plan.Intent), acc.n
			if groups == nil {
				groups = map[string]*numericAcc{}
			}
			groups[item.Value] = acc
		case shapeCompare:
			left, err := parseDecimal(row[1])
			if err != nil {
				return nil, err
			}
			right, err := parseDecimal(row[2])
			if err != nil {
				return nil, err
			}
			r := right.InexactFloat64()
			item.Count, item.Compare = left.InexactFloat64(), &r
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &Result{Items: items, Groups: groups}, nil
}

// decodeAcc reads sum, count, min, max columns. Returns nil when count is zero.
func decodeAcc(cols []*string) (*numericAcc, error) {
	if len(cols) < 4 {
		return nil, fmt.Errorf("unexpected push-down aggregate shape")
	}
	n, err := parseInt(cols[1])
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	acc := &numericAcc{n: n}
	if acc.sum, err = parseDecimal(cols[0]); err != nil {
		return nil, err
	}
	if acc.min, err = parseDecimal(cols[2]); err != nil {
		return nil, err
	}
	if acc.max, err = parseDecimal(cols[3]); err != nil {
		return nil, err
	}
	return acc, nil
}

func parseInt(s *string) (int64, error) {
	if s == nil {
		return 0, nil
	}
	n, err := strconv.ParseInt(*s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse push-down count %q: %w", *s, err)
	}
	return n, nil
}

func parseDecimal(s *string) (decimal.Decimal, error) {
	if s == nil {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse push-down value %q: %w", *s, err)
	}
	return d, nil
}
