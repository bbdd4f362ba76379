package insights

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/apperrors"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

type fakeRunner struct {
	rows    [][]*string
	err     error
	queries []string
	args    [][]any
}

func (r *fakeRunner) QueryText(_ context.Context, query string, args ...any) ([][]*string, error) {
	r.queries = append(r.queries, query)
	r.args = append(r.args, args)
	return r.rows, r.err
}

func strs(values ...string) []*string {
	out := make([]*string, len(values))
	for i := range values {
		if values[i] == "<null>" {
			continue
		}
		v := values[i]
		out[i] = &v
	}
	return out
}

func TestBuildPushdownQuery_Scalar(t *testing.T) {
	id := uuid.New()
	q, err := BuildPushdownQuery(Plan{FileID: id, Intent: models.IntentSum, Column: "Revenue"}, nil)
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "FROM file_rows")
	assert.Contains(t, q.SQL, "data #>> $2::text[]")
	assert.Contains(t, q.SQL, numericTokenSQL)
	assert.Contains(t, q.SQL, "SUM(num)::text")
	require.Len(t, q.Args, 2)
	assert.Equal(t, id, q.Args[0])
	assert.Equal(t, []string{"Revenue"}, q.Args[1])
}

func TestBuildPushdownQuery_DataPathAndFilter(t *testing.T) {
	plan := Plan{
		FileID: uuid.New(),
		Intent: models.IntentCount,
		Column: "Service",
		Filter: &models.Filter{Column: "Country", Value: " DE "},
	}
	q, err := BuildPushdownQuery(plan, []string{"cells"})
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "COUNT(val)")
	assert.Contains(t, q.SQL, "lower(flt) = lower($4)")
	assert.Equal(t, []any{plan.FileID, []string{"cells", "Service"}, []string{"cells", "Country"}, "DE"}, q.Args)
}

func TestBuildPushdownQuery_Ranked(t *testing.T) {
	top, err := BuildPushdownQuery(Plan{FileID: uuid.New(), Intent: models.IntentTop, Column: "Service", TopN: 3}, nil)
	require.NoError(t, err)
	assert.Contains(t, top.SQL, `ORDER BY COUNT(*) DESC, val COLLATE "C"`)
	assert.Equal(t, 3, top.Args[len(top.Args)-1])

	minimum, err := BuildPushdownQuery(Plan{FileID: uuid.New(), Intent: models.IntentMin, Column: "Cost", GroupBy: "Country", TopN: 5}, nil)
	require.NoError(t, err)
	assert.Contains(t, minimum.SQL, `ORDER BY MIN(num) ASC, grp COLLATE "C"`)

	avg, err := BuildPushdownQuery(Plan{FileID: uuid.New(), Intent: models.IntentAvg, Column: "Cost", GroupBy: "Country", TopN: 5}, nil)
	require.NoError(t, err)
	assert.Contains(t, avg.SQL, `ORDER BY SUM(num) / COUNT(num) DESC`)

	cmp, err := BuildPushdownQuery(Plan{FileID: uuid.New(), Intent: models.IntentCompare, Column: "Revenue", CompareColumn: "Cost", GroupBy: "Country", TopN: 1}, nil)
	require.NoError(t, err)
	assert.Contains(t, cmp.SQL, "GREATEST(")
	assert.Equal(t, 2, cmp.Args[len(cmp.Args)-1])
}

func TestBuildPushdownQuery_MalformedPath(t *testing.T) {
	_, err := BuildPushdownQuery(Plan{FileID: uuid.New(), Intent: models.IntentSum, Column: "Revenue"}, []string{"data", " "})
	assert.ErrorIs(t, err, apperrors.ErrMalformedPath)

	_, err = BuildPushdownQuery(Plan{FileID: uuid.New(), Intent: models.IntentCompare, Column: "Revenue", GroupBy: "Country"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrMalformedPath)
}

func TestPushdownExecutor_RefusesUnsafeLiteral(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	runner := &fakeRunner{}
	exec := NewPushdownExecutor(runner, nil, zap.New(core))
	fileID := uuid.New()

	_, err := exec.Execute(context.Background(), Plan{
		FileID: fileID,
		Intent: models.IntentRows,
		Filter: &models.Filter{Column: "Country", Value: "' OR '1'='1"},
	})
	assert.ErrorIs(t, err, apperrors.ErrUnsafeLiteral)
	assert.Empty(t, runner.queries)

	events := recorded.FilterLoggerName("security_audit").All()
	require.Len(t, events, 1)
	assert.Equal(t, fileID.String(), events[0].ContextMap()["file_id"])
	assert.Equal(t, "Country", events[0].ContextMap()["column"])
}

func TestPushdownExecutor_Unavailable(t *testing.T) {
	exec := NewPushdownExecutor(nil, nil, nil)
	_, err := exec.Execute(context.Background(), Plan{FileID: uuid.New(), Intent: models.IntentRows})
	assert.ErrorIs(t, err, apperrors.ErrPushdownUnavailable)
}

func TestPushdownExecutor_Decode(t *testing.T) {
	ctx := context.Background()

	t.Run("count", func(t *testing.T) {
		exec := NewPushdownExecutor(&fakeRunner{rows: [][]*string{strs("6")}}, nil, nil)
		res, err := exec.Execute(ctx, Plan{FileID: uuid.New(), Intent: models.IntentRows})
		require.NoError(t, err)
		assert.Equal(t, 6.0, res.Value)
		assert.Equal(t, int64(6), res.Count)
	})

	t.Run("avg", func(t *testing.T) {
		exec := NewPushdownExecutor(&fakeRunner{rows: [][]*string{strs("1035.5", "4", "5", "1000")}}, nil, nil)
		res, err := exec.Execute(ctx, Plan{FileID: uuid.New(), Intent: models.IntentAvg, Column: "Revenue"})
		require.NoError(t, err)
		assert.InDelta(t, 258.875, res.Value, 1e-9)
		assert.Equal(t, "1035.5", res.Sum.String())
		assert.Equal(t, int64(4), res.Count)
	})

	t.Run("no numeric values", func(t *testing.T) {
		exec := NewPushdownExecutor(&fakeRunner{rows: [][]*string{strs("<null>", "0", "<null>", "<null>")}}, nil, nil)
		res, err := exec.Execute(ctx, Plan{FileID: uuid.New(), Intent: models.IntentMax, Column: "Service"})
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("grouped avg", func(t *testing.T) {
		rows := [][]*string{
			strs("DE", "1010", "2", "10", "1000"),
			strs("FR", "20.5", "1", "20.5", "20.5"),
		}
		exec := NewPushdownExecutor(&fakeRunner{rows: rows}, nil, nil)
		res, err := exec.Execute(ctx, Plan{FileID: uuid.New(), Intent: models.IntentAvg, Column: "Revenue", GroupBy: "Country"})
		require.NoError(t, err)
		assert.Equal(t, []models.AnswerItem{
			{Value: "DE", Count: 505, Weight: 2},
			{Value: "FR", Count: 20.5, Weight: 1},
		}, res.Items)
		require.Contains(t, res.Groups, "DE")
		assert.Equal(t, "1010", res.Groups["DE"].sum.String())
		assert.Equal(t, int64(2), res.Groups["DE"].n)
	})

	t.Run("compare", func(t *testing.T) {
		exec := NewPushdownExecutor(&fakeRunner{rows: [][]*string{strs("DE", "1010", "4")}}, nil, nil)
		res, err := exec.Execute(ctx, Plan{FileID: uuid.New(), Intent: models.IntentCompare, Column: "Revenue", CompareColumn: "Cost", GroupBy: "Country"})
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, 1010.0, res.Items[0].Count)
		assert.Equal(t, 4.0, *res.Items[0].Compare)
	})

	t.Run("empty ranked result", func(t *testing.T) {
		exec := NewPushdownExecutor(&fakeRunner{}, nil, nil)
		res, err := exec.Execute(ctx, Plan{FileID: uuid.New(), Intent: models.IntentTop, Column: "Service"})
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("runner error", func(t *testing.T) {
		exec := NewPushdownExecutor(&fakeRunner{err: errors.New("boom")}, nil, nil)
		_, err := exec.Execute(ctx, Plan{FileID: uuid.New(), Intent: models.IntentRows})
		assert.ErrorContains(t, err, "boom")
	})
}
